package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/dexapi/pokedex/internal/config"
	"github.com/dexapi/pokedex/internal/ingest"
	"github.com/dexapi/pokedex/internal/logging"
	"github.com/dexapi/pokedex/internal/store"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	// An explicit path argument overrides the configured one.
	path := cfg.Ingest.CSVPath
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		slog.Error("failed to parse database URL", "error", err)
		os.Exit(1)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Ingest.Timeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	report, err := ingest.Run(ctx, store.New(pool), path, ingest.Options{
		ProgressEvery: cfg.Ingest.ProgressEvery,
	})
	if err != nil {
		slog.Error("ingestion failed", "error", err)
		os.Exit(1)
	}

	slog.Info("ingestion complete",
		"run_id", report.RunID.String(),
		"file", report.Path,
		"rows", report.TotalRows,
		"inserted", report.Inserted,
		"failed", len(report.Failed),
		"duration_ms", report.Duration.Milliseconds(),
	)

	if len(report.Failed) > 0 {
		os.Exit(2)
	}
}
