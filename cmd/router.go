package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go-event-relay/internal/infrastructure/config"
	"go-event-relay/internal/infrastructure/hub"
	"go-event-relay/internal/infrastructure/logger"
	"go-event-relay/internal/interfaces/rest/middleware"
	"go-event-relay/internal/interfaces/rest/v1/handler"
	"go-event-relay/internal/interfaces/sse"
	"go-event-relay/internal/interfaces/websocket"
)

func InitRouter(cfg *config.Config, registry *hub.Registry, broadcaster *hub.Broadcaster, log logger.Logger) http.Handler {
	router := gin.New()
	router.Use(gin.Recovery())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, "+middleware.SecretHeader)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	rootGroup := router.Group("")

	healthHandler := handler.NewHealthHandler(registry, clockwork.NewRealClock())
	rootGroup.GET("/healthz", healthHandler.Health)
	rootGroup.GET("/metrics", gin.WrapH(promhttp.Handler()))

	defaults := hub.EventDefaults{
		Type:     cfg.DefaultEventType,
		SourceID: cfg.DefaultSourceID,
	}
	notifyHandler := handler.NewNotifyHandler(registry, broadcaster, defaults, log)

	apiGroup := rootGroup.Group("/api/v1")
	apiGroup.Use(middleware.Authorize(middleware.SharedSecret(cfg.RelaySecret)))
	{
		apiGroup.POST("/notify", notifyHandler.Notify)
	}

	sse.InitSSERouter(log, registry, rootGroup)
	websocket.InitWebSocketRouter(log, registry, rootGroup)

	return router
}
