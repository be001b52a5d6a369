package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"

	"go-event-relay/internal/infrastructure/hub"
)

// HealthHandler reports registry size and process uptime. Read-only; it
// never mutates relay state.
type HealthHandler struct {
	registry *hub.Registry
	clock    clockwork.Clock
	startAt  time.Time
}

func NewHealthHandler(registry *hub.Registry, clock clockwork.Clock) *HealthHandler {
	return &HealthHandler{
		registry: registry,
		clock:    clock,
		startAt:  clock.Now(),
	}
}

func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"clients":        h.registry.Size(),
		"uptime_seconds": h.clock.Since(h.startAt).Seconds(),
	})
}
