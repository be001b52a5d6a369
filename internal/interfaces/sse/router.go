package sse

import (
	"github.com/gin-gonic/gin"

	"go-event-relay/internal/infrastructure/hub"
	"go-event-relay/internal/infrastructure/logger"
)

// InitSSERouter initializes SSE routes.
func InitSSERouter(log logger.Logger, registry *hub.Registry, rg *gin.RouterGroup) {
	sseHandler := NewServerSentEventHandler(registry, log)

	sseGroup := rg.Group("/sse")
	sseGroup.GET("", sseHandler.Connect)

	apiGroup := rg.Group("/api/v1/sse")
	apiGroup.GET("/connections", sseHandler.GetConnections)
}
