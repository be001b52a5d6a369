package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"go-event-relay/internal/infrastructure/config"
	"go-event-relay/internal/infrastructure/hub"
	"go-event-relay/internal/infrastructure/logger"
	"go-event-relay/internal/infrastructure/server"
)

func main() {
	ctx := context.Background()
	sctx := WithSignal(ctx)

	cfg, err := config.Load()
	if err != nil {
		logger.NewLogrusLogger(logger.Options{}).Fatalf("failed to load config: %v", err)
	}

	log := logger.NewLogrusLogger(logger.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: cfg.LogOutput,
		File:   cfg.LogFile,
	}).WithField("service", "event-relay")

	registry := hub.NewRegistry(log)
	broadcaster := hub.NewBroadcaster(registry, log, cfg.SendTimeout)

	router := InitRouter(cfg, registry, broadcaster, log)
	httpSrv := server.NewHTTPServer(cfg.Addr, router)

	app := newApplication(log, httpSrv, registry)
	if err := app.Run(sctx); err != nil {
		log.Errorf("failed to run application: %v", err)
	}
}

type Application struct {
	logger   logger.Logger
	httpSrv  server.Server
	registry *hub.Registry
}

func newApplication(log logger.Logger, httpSrv *server.HTTPServer, registry *hub.Registry) *Application {
	return &Application{
		logger:   log.WithField("app", "relay"),
		httpSrv:  httpSrv,
		registry: registry,
	}
}

// Run serves until the context is cancelled, then drains: the listener
// stops accepting, open connections are closed, and in-flight requests
// get a bounded window to finish.
func (app *Application) Run(ctx context.Context) error {
	eg := errgroup.Group{}

	eg.Go(func() error {
		return app.httpSrv.Start(ctx)
	})

	eg.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.registry.CloseAll()
		return app.httpSrv.Stop(shutdownCtx)
	})

	return eg.Wait()
}

func WithSignal(pctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(pctx)

	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

		<-sigc

		cancel()
	}()

	return ctx
}
