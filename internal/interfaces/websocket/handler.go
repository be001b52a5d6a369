package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"go-event-relay/internal/infrastructure/hub"
	"go-event-relay/internal/infrastructure/logger"
)

// WebSocketHandler upgrades inbound HTTP connections to WebSocket and
// hands them to the registry.
type WebSocketHandler struct {
	registry *hub.Registry
	logger   logger.Logger
	upgrader websocket.Upgrader
}

func NewWebSocketHandler(registry *hub.Registry, log logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		registry: registry,
		logger:   log.WithField("handler", "websocket"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Origin policy belongs to the deployment, not the relay.
				return true
			},
		},
	}
}

// Connect handles WebSocket upgrade requests. On success the connection
// is registered, greeted once directly (never via broadcast), and held
// until the peer leaves by close, error or failed send.
func (h *WebSocketHandler) Connect(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Errorf("failed to upgrade connection: %v", err)
		return
	}

	wsConn := hub.NewWebSocketConnection("ws-"+uuid.NewString(), conn, h.logger)
	h.registry.Register(wsConn)

	if err := wsConn.Send(c.Request.Context(), greeting(wsConn.ID())); err != nil {
		h.logger.Errorf("failed to greet connection %s: %v", wsConn.ID(), err)
		h.registry.Unregister(wsConn)
		return
	}

	// Hold the handler open until the connection ends by any path,
	// then remove it from the registry. Unregister is idempotent, so
	// racing a failed-send removal is fine.
	<-wsConn.Context().Done()
	h.registry.Unregister(wsConn)
	h.logger.Infof("websocket connection %s disconnected", wsConn.ID())
}

// GetConnections lists the registered WebSocket connections.
func (h *WebSocketHandler) GetConnections(c *gin.Context) {
	connections := h.registry.SnapshotByType("websocket")
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
