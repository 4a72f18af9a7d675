package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/analyzer"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/indexer/builder"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/indexer/consumer"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/indexer/registry"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/store"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/pkg/postgres"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	once := flag.Bool("once", false, "rebuild every configured language and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting indexer service",
		"data_dir", cfg.Indexer.DataDir,
		"languages", cfg.Indexer.Languages,
		"once", *once,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New(nil)
	if cfg.Metrics.Enabled && !*once {
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

	reg := registry.New(cfg.Indexer.DataDir, analyzer.New())
	b := builder.New(reg, cfg.Indexer.MaxParallelBuilds, m)

	rebuild := func(ctx context.Context, langs []string) error {
		report, err := b.RebuildFromStore(ctx, docs, langs)
		for _, l := range report.Languages {
			slog.Info("partition rebuilt",
				"language", l.Language,
				"added", l.Added,
				"skipped", l.Skipped(),
				"generation", l.Generation,
				"duration", l.Duration,
			)
		}
		return err
	}

	if err := rebuild(ctx, cfg.Indexer.Languages); err != nil {
		slog.Error("initial rebuild failed", "error", err)
		if *once {
			os.Exit(1)
		}
	}
	if *once {
		slog.Info("indexer finished")
		return
	}

	if !cfg.Kafka.Enabled {
		slog.Info("kafka disabled, waiting for shutdown")
		<-ctx.Done()
		slog.Info("indexer service stopped")
		return
	}

	scheduler := consumer.NewScheduler(rebuild, cfg.Indexer.RebuildDebounce, cfg.Indexer.Languages)
	go scheduler.Run(ctx)

	kafkaConsumer := kafka.NewConsumer(
		cfg.Kafka,
		cfg.Kafka.Topics.DocumentStored,
		consumer.HandleMessage(scheduler),
	)
	defer kafkaConsumer.Close()

	slog.Info("indexer service ready, consuming from kafka",
		"topic", cfg.Kafka.Topics.DocumentStored,
		"group", cfg.Kafka.ConsumerGroup,
		"debounce", cfg.Indexer.RebuildDebounce,
	)

	if err := kafkaConsumer.Start(ctx); err != nil {
		slog.Error("consumer error", "error", err)
	}

	slog.Info("indexer service stopped")
}
