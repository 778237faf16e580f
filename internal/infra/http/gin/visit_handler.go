package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"iasrentals/internal/app/commands"
	"iasrentals/internal/app/dto"
	visitsapp "iasrentals/internal/app/handlers/visits"
	"iasrentals/internal/app/queries"
)

const idempotencyKeyHeader = "Idempotency-Key"

type VisitHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type createVisitRequest struct {
	PropertyID string `json:"property_id" binding:"required"`
	VisitDate  string `json:"visit_date" binding:"required"`
	VisitTime  string `json:"visit_time" binding:"required"`
	Notes      string `json:"notes"`
}

// Available lists the slot grid for a property and date. It is public.
func (h VisitHandler) Available(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "visit handler unavailable"})
		return
	}
	date := strings.TrimSpace(c.Query("date"))
	if date == "" {
		badRequest(c, "date is required")
		return
	}
	query := visitsapp.GetAvailableSlotsQuery{
		PropertyID: strings.TrimSpace(c.Param("property_id")),
		Date:       date,
	}
	result, err := queries.Ask[visitsapp.GetAvailableSlotsQuery, dto.AvailableSlots](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h VisitHandler) Create(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands bus unavailable"})
		return
	}
	var req createVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}
	cmd := visitsapp.ScheduleVisitCommand{
		PropertyID:      req.PropertyID,
		BuyerID:         p.ID,
		Date:            req.VisitDate,
		Time:            req.VisitTime,
		Notes:           req.Notes,
		IdempotencyKeyV: strings.TrimSpace(c.GetHeader(idempotencyKeyHeader)),
	}
	result, err := commands.Dispatch[visitsapp.ScheduleVisitCommand, *dto.Visit](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h VisitHandler) Mine(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "visit handler unavailable"})
		return
	}
	query := visitsapp.ListMyVisitsQuery{ActorID: p.ID, ActorRole: p.Role}
	result, err := queries.Ask[visitsapp.ListMyVisitsQuery, []dto.Visit](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	if result == nil {
		result = []dto.Visit{}
	}
	c.JSON(http.StatusOK, result)
}

func (h VisitHandler) Cancel(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands bus unavailable"})
		return
	}
	cmd := visitsapp.CancelVisitCommand{VisitID: strings.TrimSpace(c.Param("id")), ActorID: p.ID}
	result, err := commands.Dispatch[visitsapp.CancelVisitCommand, dto.StatusMessage](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h VisitHandler) Complete(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands bus unavailable"})
		return
	}
	cmd := visitsapp.CompleteVisitCommand{VisitID: strings.TrimSpace(c.Param("id")), ActorID: p.ID}
	result, err := commands.Dispatch[visitsapp.CompleteVisitCommand, *dto.Visit](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ VisitHTTP = (*VisitHandler)(nil)
