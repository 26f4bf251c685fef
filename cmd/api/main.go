package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"outlet-insights-go/internal/config"
	"outlet-insights-go/internal/dashboard"
	"outlet-insights-go/internal/dataset"
	"outlet-insights-go/internal/insight"
	"outlet-insights-go/internal/llm"
	"outlet-insights-go/internal/logger"
)

func main() {
	log := logger.New()
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	logger.Setup(cfg.Environment, cfg.LogLevel)
	log = logger.New()
	log.WithField("service", "outlet-insights-go").WithField("offline", cfg.Offline).Info("starting service")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, closeSrc, err := openSource(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to open data source")
	}
	defer closeSrc()

	log.WithField("source", cfg.Data.Source).WithField("periods", cfg.Periods).Info("loading datasets")
	store := dataset.Load(ctx, src, cfg.Periods)
	cache, err := dataset.NewCache(store, cfg.Data.CacheEntries)
	if err != nil {
		log.WithError(err).Fatal("failed to build dataset cache")
	}

	client, err := llm.New(ctx, cfg.LLM, cfg.Offline)
	if err != nil {
		// the dashboard still works; insight requests report the error
		log.WithError(err).Warn("llm client unavailable")
	} else {
		log.WithField("llm", client.Name()).Info("llm client ready")
	}
	orch := insight.NewOrchestrator(client, insight.Options{
		ChunkThreshold: cfg.Insights.ChunkThreshold,
		ChunkSize:      cfg.Insights.ChunkSize,
		Reflow:         cfg.Insights.ReflowBullets,
	})

	svc, err := dashboard.NewService(cache, orch, dashboard.Options{
		DefaultPeriod:   cfg.DefaultPeriod,
		SessionCapacity: cfg.SessionCapacity,
		PackMaxRows:     cfg.Insights.PackMaxRows,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to build dashboard service")
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      newServer(svc, cfg).routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server terminated")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}

// openSource picks the upstream extraction layer. Offline mode never
// touches it.
func openSource(cfg config.Config) (dataset.Source, func(), error) {
	noop := func() {}
	if cfg.Offline {
		return dataset.EmptySource{}, noop, nil
	}
	switch cfg.Data.Source {
	case "workbook":
		return dataset.NewWorkbookSource(cfg.Data.WorkbookDir), noop, nil
	case "postgres":
		ws, err := dataset.NewWarehouseSource(cfg.Data.WarehouseDSN)
		if err != nil {
			return nil, noop, err
		}
		return ws, func() { _ = ws.Close() }, nil
	}
	return dataset.EmptySource{}, noop, nil
}
