package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-event-relay/internal/infrastructure/hub"
	"go-event-relay/internal/infrastructure/logger"
	"go-event-relay/internal/infrastructure/metrics"
)

// NotifyHandler ingests inbound event notifications and fans them out.
type NotifyHandler struct {
	registry    *hub.Registry
	broadcaster *hub.Broadcaster
	defaults    hub.EventDefaults
	logger      logger.Logger
}

// NotifyRequest is the loose inbound shape; every field is optional and
// normalization fills the gaps.
type NotifyRequest struct {
	Type      string          `json:"type"`
	SourceID  string          `json:"sourceId"`
	Timestamp int64           `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

func NewNotifyHandler(registry *hub.Registry, broadcaster *hub.Broadcaster, defaults hub.EventDefaults, log logger.Logger) *NotifyHandler {
	return &NotifyHandler{
		registry:    registry,
		broadcaster: broadcaster,
		defaults:    defaults,
		logger:      log.WithField("handler", "notify"),
	}
}

// Notify handles POST /api/v1/notify. Malformed JSON gets a 400 and no
// broadcast happens; a valid body is normalized, serialized once and
// delivered to every open connection.
func (h *NotifyHandler) Notify(c *gin.Context) {
	var req NotifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorf("invalid notification body: %v", err)
		metrics.NotificationsRejectedTotal.WithLabelValues("malformed").Inc()
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid notification format",
		})
		return
	}

	event := hub.NewEvent(req.Type, req.SourceID, req.Timestamp, req.Payload, h.defaults)
	payload, err := event.Encode()
	if err != nil {
		h.logger.Errorf("failed to encode event %s: %v", event.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to encode event",
		})
		return
	}

	delivered := h.broadcaster.Broadcast(c.Request.Context(), payload)

	h.logger.Infof("event %s (type: %s) delivered to %d connections", event.ID, event.Type, delivered)

	c.JSON(http.StatusOK, gin.H{
		"event_id":  event.ID,
		"delivered": delivered,
		"clients":   h.registry.Size(),
	})
}
