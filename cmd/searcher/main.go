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

	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/analyzer"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/indexer/registry"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/searcher/engine"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/pkg/ratelimit"
	pkgredis "github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/pkg/redis"
)

const queryLogBuffer = 10000

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting search service",
		"port", cfg.Server.Port,
		"languages", cfg.Search.SupportedLanguages,
		"default_language", cfg.Search.DefaultLanguage,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New(nil)
	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer shutdownMetrics(context.Background())
	}

	an := analyzer.New()
	reg := registry.New(cfg.Indexer.DataDir, an)

	var queryCache *cache.QueryCache
	var redisClient *pkgredis.Client
	if cfg.Redis.Enabled {
		redisClient, err = pkgredis.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, search caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			queryCache = cache.New(redisClient, cfg.Redis.CacheTTL, m)
			slog.Info("search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	go reg.StartRefreshLoop(ctx, cfg.Indexer.RefreshInterval, func(lang string) {
		slog.Info("partition snapshot changed", "language", lang)
		if queryCache == nil {
			return
		}
		if err := queryCache.Invalidate(ctx); err != nil {
			slog.Warn("cache invalidation failed", "language", lang, "error", err)
		}
	})

	eng := engine.New(reg, an, engine.Config{
		DefaultLanguage:    cfg.Search.DefaultLanguage,
		SupportedLanguages: cfg.Search.SupportedLanguages,
		MaxResults:         cfg.Search.MaxResults,
		SnippetWords:       cfg.Search.SnippetWords,
	}, m)

	queryLog := analytics.NewQueryLog(cfg.Analytics.QueryLogPath, queryLogBuffer)
	if err := queryLog.Start(); err != nil {
		slog.Error("failed to open query log", "path", cfg.Analytics.QueryLogPath, "error", err)
		os.Exit(1)
	}
	trendingH := analytics.NewHandler(queryLog.Path(), cfg.Analytics.TrendingDefault)

	checker := health.NewChecker()
	checker.Register("partitions", func(ctx context.Context) health.ComponentHealth {
		langs, err := reg.Languages()
		if err != nil {
			return health.FromError(err, health.StatusDown)
		}
		if len(langs) == 0 {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "no partitions built yet"}
		}
		return health.ComponentHealth{Status: health.StatusUp, Message: fmt.Sprintf("%d languages", len(langs))}
	})
	if redisClient != nil {
		checker.Register("redis", redisClient.HealthCheck())
	}

	h := handler.New(eng, queryCache, queryLog, m)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/trending", trendingH.Trending)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	mws := []func(http.Handler) http.Handler{
		middleware.RequestID,
		middleware.CORS(middleware.DefaultCORSConfig()),
		middleware.Metrics(m),
	}
	if cfg.RateLimit.Enabled {
		limiter := ratelimit.New(cfg.RateLimit.Window)
		go limiter.RunCleanup(ctx, cfg.RateLimit.Window)
		mws = append(mws, middleware.RateLimit(limiter, cfg.RateLimit.Limit))
	}
	mws = append(mws, middleware.Timeout(cfg.Search.Timeout))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      middleware.Chain(mux, mws...),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("search service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		queryLog.Close()
		os.Exit(1)
	}

	<-shutdownDone
	queryLog.Close()

	slog.Info("search service stopped")
}
