// Command ingestion starts the document ingestion HTTP service.
//
// The service accepts documents via POST /api/v1/documents, validates them,
// stores them in PostgreSQL, and announces each new document on Kafka so the
// indexer can rebuild the affected language partition.
//
// Usage:
//
//	go run ./cmd/ingestion [-config configs/development.yaml]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/auth/apikey"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/ingestion/handler"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/ingestion/publisher"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/ingestion/validator"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/store"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/pkg/ratelimit"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting ingestion service", "port", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New(nil)
	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer shutdownMetrics(context.Background())
	}

	db, err := postgres.New(ctx, cfg.Postgres)
	if err != nil {
		slog.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	docs := store.NewPostgres(db)
	if err := docs.EnsureSchema(ctx); err != nil {
		slog.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}
	slog.Info("connected to postgres")

	var producer kafka.Publisher
	if cfg.Kafka.Enabled {
		p := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.DocumentStored)
		defer p.Close()
		producer = p
		slog.Info("kafka producer initialized", "topic", cfg.Kafka.Topics.DocumentStored)
	} else {
		slog.Warn("kafka disabled, indexer must be run with -once to pick up new documents")
	}

	pub := publisher.New(docs, producer, m)
	h := handler.New(pub, validator.New(cfg.Search.SupportedLanguages))

	checker := health.NewChecker()
	checker.Register("postgres", db.HealthCheck())

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/documents", h.Ingest)
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	mws := []func(http.Handler) http.Handler{
		middleware.RequestID,
		middleware.Metrics(m),
	}
	if cfg.Auth.Enabled {
		keys := apikey.NewManager(db)
		if err := keys.EnsureSchema(ctx); err != nil {
			slog.Error("failed to ensure api key schema", "error", err)
			os.Exit(1)
		}
		limiter := ratelimit.New(time.Minute)
		go limiter.RunCleanup(ctx, time.Minute)
		mws = append(mws, apikey.Require(keys, limiter))
		slog.Info("api key authentication enabled")
	}
	mws = append(mws, middleware.Timeout(cfg.Server.WriteTimeout))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      middleware.Chain(mux, mws...),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()
	slog.Info("ingestion service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("ingestion service stopped")
}
