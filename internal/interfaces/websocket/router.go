package websocket

import (
	"github.com/gin-gonic/gin"

	"go-event-relay/internal/infrastructure/hub"
	"go-event-relay/internal/infrastructure/logger"
)

// InitWebSocketRouter initializes WebSocket routes.
func InitWebSocketRouter(log logger.Logger, registry *hub.Registry, rg *gin.RouterGroup) {
	wsHandler := NewWebSocketHandler(registry, log)

	wsGroup := rg.Group("/ws")
	wsGroup.GET("", wsHandler.Connect)

	apiGroup := rg.Group("/api/v1/ws")
	apiGroup.GET("/connections", wsHandler.GetConnections)
}
