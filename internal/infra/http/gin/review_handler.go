package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"iasrentals/internal/app/commands"
	"iasrentals/internal/app/dto"
	reviewsapp "iasrentals/internal/app/handlers/reviews"
	"iasrentals/internal/app/queries"
)

type ReviewHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type createReviewRequest struct {
	OwnerID    string `json:"owner_id" binding:"required"`
	PropertyID string `json:"property_id" binding:"required"`
	VisitID    string `json:"visit_id"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment"`
}

func (h ReviewHandler) Create(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands bus unavailable"})
		return
	}
	var req createReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}
	cmd := reviewsapp.CreateReviewCommand{
		ActorID:         p.ID,
		ActorRole:       p.Role,
		OwnerID:         req.OwnerID,
		PropertyID:      req.PropertyID,
		VisitID:         req.VisitID,
		Rating:          req.Rating,
		Comment:         req.Comment,
		IdempotencyKeyV: strings.TrimSpace(c.GetHeader(idempotencyKeyHeader)),
	}
	result, err := commands.Dispatch[reviewsapp.CreateReviewCommand, *dto.Review](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h ReviewHandler) ByOwner(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "review handler unavailable"})
		return
	}
	query := reviewsapp.GetOwnerReviewsQuery{OwnerID: strings.TrimSpace(c.Param("owner_id"))}
	result, err := queries.Ask[reviewsapp.GetOwnerReviewsQuery, dto.OwnerReviews](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ReviewHandler) ByProperty(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "review handler unavailable"})
		return
	}
	query := reviewsapp.GetPropertyReviewsQuery{PropertyID: strings.TrimSpace(c.Param("property_id"))}
	result, err := queries.Ask[reviewsapp.GetPropertyReviewsQuery, []dto.Review](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	if result == nil {
		result = []dto.Review{}
	}
	c.JSON(http.StatusOK, result)
}

var _ ReviewHTTP = (*ReviewHandler)(nil)
