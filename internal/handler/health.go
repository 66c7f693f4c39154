package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Check is one backing service pinged by /readyz.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

type HealthHandler struct {
	checks []Check
}

// NewHealthHandler runs checks in order. Backends that are not configured
// are simply left out.
func NewHealthHandler(checks ...Check) *HealthHandler {
	return &HealthHandler{checks: checks}
}

func (h *HealthHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HealthHandler) Readyz(c *gin.Context) {
	ctx := c.Request.Context()

	resp := gin.H{"status": "ok"}
	for _, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", check.Name: "unavailable"})
			return
		}
		resp[check.Name] = "connected"
	}

	c.JSON(http.StatusOK, resp)
}
