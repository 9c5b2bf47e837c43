package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/example/shopcore/gateway"
	"github.com/example/shopcore/pkg/backend"
	"github.com/example/shopcore/pkg/config"
	"github.com/example/shopcore/pkg/store"
	"github.com/example/shopcore/pkg/workflow"
	"go.uber.org/zap"
)

func main() {
	// Load config
	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Setup logger
	logger, err := newLogger(&cfg.Log)
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("Starting shop service",
		zap.Int("page_size", cfg.Shop.PageSize),
		zap.Duration("debounce_window", cfg.Shop.DebounceWindow))

	// Entity store with its single-writer dispatcher
	system := actor.NewActorSystem()
	st := store.New(system, logger.Named("store"), cfg.Shop.PageSize)
	defer st.Stop()

	// Backend simulator and workflow engine
	sim := backend.NewSimulator(&cfg.Backend, logger.Named("backend"))
	engine := workflow.NewEngine(st, sim, logger.Named("workflow"), workflow.Options{
		Debounce: cfg.Shop.DebounceWindow,
	})
	views := store.NewViews(st)

	// Warm the catalog before serving
	if err := <-engine.FetchProducts(); err != nil {
		logger.Warn("Initial catalog fetch failed", zap.Error(err))
	} else {
		logger.Info("Catalog loaded",
			zap.Int("products", len(views.AllProducts())),
			zap.Int("total", views.Pagination().Total))
	}

	// HTTP facade
	gw := gateway.NewGateway(cfg, logger.Named("gateway"), engine, views, sim)
	gw.SetupRoutes()

	serverErr := make(chan error, 1)
	go func() {
		if err := gw.Start(); err != nil {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info("Received shutdown signal")
	case err := <-serverErr:
		logger.Fatal("Server error", zap.Error(err))
	}

	logger.Info("Service stopped")
}

func newLogger(cfg *config.LogConfig) (*zap.Logger, error) {
	if cfg.Encoding == "console" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
