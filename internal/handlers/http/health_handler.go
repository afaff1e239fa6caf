package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const pingTimeout = 2 * time.Second

// HealthHandler reports liveness and database reachability.
type HealthHandler struct {
	env  string
	ping func(context.Context) error
}

// NewHealthHandler creates a HealthHandler. ping may be nil when there is no database.
func NewHealthHandler(env string, ping func(context.Context) error) *HealthHandler {
	return &HealthHandler{env: env, ping: ping}
}

// Health godoc
// @Summary  Liveness and database check
// @Tags     health
// @Produce  json
// @Success  200  {object}  map[string]string
// @Failure  503  {object}  map[string]string
// @Router   /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	database := "not_configured"
	if h.ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "degraded",
				"env":      h.env,
				"database": "down",
			})
			return
		}
		database = "up"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"env":      h.env,
		"database": database,
	})
}
