package obs

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthHandlers exposes liveness, readiness and the public health probe.
type HealthHandlers struct {
	Ready   func(ctx context.Context) error
	Version string
}

func (h HealthHandlers) Livez(c *gin.Context) {
	c.Status(http.StatusOK)
}

func (h HealthHandlers) Readyz(c *gin.Context) {
	if err := h.ready(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": err.Error()})
		return
	}
	c.Status(http.StatusOK)
}

func (h HealthHandlers) Health(c *gin.Context) {
	status, code := "healthy", http.StatusOK
	if err := h.ready(c.Request.Context()); err != nil {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{"status": status, "version": h.Version, "time": time.Now().UTC()})
}

func (h HealthHandlers) ready(ctx context.Context) error {
	if h.Ready == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return h.Ready(ctx)
}
