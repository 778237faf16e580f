package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"iasrentals/internal/app/dto"
	authsvc "iasrentals/internal/app/services/auth"
	domainuser "iasrentals/internal/domain/user"
)

type ProfileHandler struct {
	Service *authsvc.Service
	Logger  *slog.Logger
}

type profileUpdateRequest struct {
	Name        *string `json:"name"`
	Phone       *string `json:"phone"`
	DateOfBirth *string `json:"date_of_birth"`
	Description *string `json:"description"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// Get returns the full profile of the caller, contact fields included.
func (h ProfileHandler) Get(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	user, err := h.Service.Profile(c.Request.Context(), domainuser.ID(p.ID))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapUserProfile(user))
}

func (h ProfileHandler) Me(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	user, err := h.Service.Profile(c.Request.Context(), domainuser.ID(p.ID))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapUser(user))
}

func (h ProfileHandler) Update(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req profileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}
	user, err := h.Service.UpdateProfile(c.Request.Context(), domainuser.ID(p.ID), authsvc.ProfileParams{
		Name:        req.Name,
		Phone:       req.Phone,
		DateOfBirth: req.DateOfBirth,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapUserProfile(user))
}

func (h ProfileHandler) ChangePassword(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := h.Service.ChangePassword(c.Request.Context(), domainuser.ID(p.ID), req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.StatusMessage{Success: true, Message: "password changed"})
}

// Deactivate disables the account; every session of the caller is revoked.
func (h ProfileHandler) Deactivate(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	if err := h.Service.Deactivate(c.Request.Context(), domainuser.ID(p.ID)); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.StatusMessage{Success: true, Message: "account deactivated"})
}

var _ ProfileHTTP = (*ProfileHandler)(nil)
