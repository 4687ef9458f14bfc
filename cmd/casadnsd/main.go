package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"casadns/internal/api"
	"casadns/internal/casadns"
	"casadns/internal/config"
	"casadns/internal/discover"
	"casadns/internal/logger"
	"casadns/internal/storage"
	"casadns/internal/updater"
	"casadns/internal/version"

	"go.uber.org/zap"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to config file")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	// Show version if requested
	if *showVersion {
		fmt.Println(version.GetInfo().String())
		os.Exit(0)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(&cfg.Log)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	defer func(log *zap.Logger) {
		_ = log.Sync()
	}(log)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optional update history store
	var store *storage.Store
	if cfg.Storage.Enabled {
		store, err = storage.Open(cfg.Storage.Path, log.Named("storage"))
		if err != nil {
			log.Fatal("Failed to open history store", zap.Error(err))
		}
	}

	// Initialize components
	discoverer := discover.New(cfg.Discovery, log.Named("discover"))
	client := casadns.NewClient(cfg.CasaDNS.Endpoint, cfg.CasaDNS.Domains, cfg.CasaDNS.Token, log.Named("casadns"))

	var recorder updater.Recorder
	if store != nil {
		recorder = store
	}
	engine := updater.New(cfg.CasaDNS.Interval, discoverer, client, recorder, log.Named("updater"))

	// Start the embedded API if enabled
	var server *http.Server
	if cfg.API.Enabled {
		var history api.History
		if store != nil {
			history = store
		}
		router := api.NewRouter(api.New(engine, history, log.Named("api")),
			cfg.Log.Level == "debug", log.Named("api"))

		server = &http.Server{
			Addr:    cfg.API.Address,
			Handler: router.Handler(),
		}

		go func() {
			log.Info("Starting API server", zap.String("address", cfg.API.Address))
			if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				log.Error("API server error", zap.Error(err))
			}
		}()
	}

	// Start the update engine
	if err := engine.Start(ctx); err != nil {
		log.Fatal("Failed to start updater", zap.Error(err))
	}

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	log.Info("Received signal", zap.String("signal", sig.String()))

	// Graceful shutdown
	log.Info("Starting graceful shutdown")
	engine.Stop()
	cancel()

	if server != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("Failed to shutdown API server", zap.Error(err))
		}
	}

	if store != nil {
		if err := store.Close(); err != nil {
			log.Error("Failed to close history store", zap.Error(err))
		}
	}

	log.Info("Shutdown complete")
}
