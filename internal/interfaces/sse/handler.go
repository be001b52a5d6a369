package sse

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"go-event-relay/internal/infrastructure/hub"
	"go-event-relay/internal/infrastructure/logger"
)

// ServerSentEventHandler attaches SSE push channels to the registry.
type ServerSentEventHandler struct {
	registry *hub.Registry
	logger   logger.Logger
}

func NewServerSentEventHandler(registry *hub.Registry, log logger.Logger) *ServerSentEventHandler {
	return &ServerSentEventHandler{
		registry: registry,
		logger:   log.WithField("handler", "sse"),
	}
}

// Connect handles SSE attach requests. The response stays open for the
// lifetime of the connection; the peer leaving cancels the request
// context, which closes the connection and unregisters it.
func (h *ServerSentEventHandler) Connect(c *gin.Context) {
	conn := hub.NewSSEConnection(
		c.Request.Context(),
		"sse-"+uuid.NewString(),
		c.Writer,
		c.Request,
		h.logger,
	)
	h.registry.Register(conn)

	if err := conn.Send(c.Request.Context(), greeting(conn.ID())); err != nil {
		h.logger.Errorf("failed to greet connection %s: %v", conn.ID(), err)
		h.registry.Unregister(conn)
		return
	}

	<-conn.Context().Done()
	h.registry.Unregister(conn)
	h.logger.Infof("sse connection %s disconnected", conn.ID())
}

// GetConnections lists the registered SSE connections.
func (h *ServerSentEventHandler) GetConnections(c *gin.Context) {
	connections := h.registry.SnapshotByType("sse")
	connectionInfo := make([]gin.H, len(connections))

	for i, conn := range connections {
		connectionInfo[i] = gin.H{
			"id":    conn.ID(),
			"type":  conn.Type(),
			"state": conn.State().String(),
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"total_connections": len(connections),
		"connections":       connectionInfo,
	})
}

func greeting(connID string) []byte {
	return []byte(`{"type":"connected","connectionId":"` + connID + `"}`)
}
