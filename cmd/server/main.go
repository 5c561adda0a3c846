package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/automaxprocs/maxprocs"

	"github.com/dgallion1/mdsite/internal/api"
	"github.com/dgallion1/mdsite/internal/config"
	"github.com/dgallion1/mdsite/internal/pipeline"
	"github.com/dgallion1/mdsite/internal/sitestore"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		log.Info(fmt.Sprintf(format, args...))
	}))

	cfg, err := config.Load()
	if err != nil {
		log.Error("load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var store *sitestore.Client
	if cfg.PublishEnabled() {
		store = sitestore.NewClient(cfg.SitestoreURL, cfg.SitestoreAPIKey)
	} else {
		log.Warn("SITESTORE_URL not set, publishing disabled")
	}

	orch := pipeline.NewOrchestrator(cfg, store, log)
	orch.Start(ctx)

	srv := api.NewServer(orch, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
		if store != nil {
			store.Close()
		}
	}()

	log.Info("starting mdsite", "port", cfg.Port, "site", cfg.SiteName, "workers", cfg.WorkerCount)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
