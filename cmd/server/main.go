package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dgallion1/pdfchunk/internal/api"
	"github.com/dgallion1/pdfchunk/internal/config"
	"github.com/dgallion1/pdfchunk/internal/metrics"
	"github.com/dgallion1/pdfchunk/internal/parser"
	"github.com/dgallion1/pdfchunk/internal/pipeline"
	"github.com/dgallion1/pdfchunk/internal/stats"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("load configuration", "error", err)
		os.Exit(1)
	}
	log := newLogger(cfg)
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st := stats.NewWindow(cfg.StatsWindow)

	// The queue gauge reads the orchestrator, which needs the processor,
	// which needs the metrics.
	var orch *pipeline.Orchestrator
	m := metrics.New(func() int { return orch.QueueDepth() })
	proc := pipeline.NewProcessor(
		parser.Options{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext},
		cfg.ChunkConfig(),
		cfg.MaxConcurrentExtract,
		st, m, log,
	)
	if cfg.ResultCacheSize > 0 {
		if err := proc.EnableCache(cfg.ResultCacheSize); err != nil {
			log.Error("result cache", "error", err)
			os.Exit(1)
		}
	}
	orch = pipeline.NewOrchestrator(proc, cfg.WorkerCount, cfg.MaxQueueSize, cfg.JobTTL, log)
	orch.Start(ctx)

	srv := api.NewServer(proc, orch, st, m, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
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
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Warn("http shutdown", "error", err)
		}
		orch.Stop()
	}()

	log.Info("starting pdfchunk",
		"port", cfg.Port,
		"service", cfg.ServiceName,
		"version", cfg.ServiceVersion,
		"chunk_size", cfg.DefaultChunkSize,
		"chunk_overlap", cfg.DefaultChunkOverlap,
		"auth", cfg.APIKey != "",
		"rate_limit", cfg.RateLimit,
	)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if cfg.Debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
