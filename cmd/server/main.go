package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/sheetline/sheetline/internal/config"
	"github.com/sheetline/sheetline/internal/core"
	"github.com/sheetline/sheetline/internal/logging"
	"github.com/sheetline/sheetline/internal/store"
	"github.com/sheetline/sheetline/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"db_max_conns", cfg.Database.MaxConns,
		"max_file_size", cfg.Ingest.MaxFileSize,
		"keep_uploads", cfg.Blob.KeepUploads,
	)

	// Parse and configure connection pool
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		slog.Error("failed to parse database URL", "error", err)
		os.Exit(1)
	}

	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	// Connect to database
	ctx := context.Background()
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	// Log which database we connected to
	if u, err := url.Parse(cfg.Database.URL); err == nil {
		dbName := strings.TrimPrefix(u.Path, "/")
		slog.Info("connected to database", "name", dbName)
	} else {
		slog.Info("connected to database")
	}

	// Create the configuration and history stores and their schemas
	fieldStore := store.NewFieldStore(pool)
	if err := fieldStore.EnsureSchema(ctx); err != nil {
		slog.Error("failed to create fields schema", "error", err)
		os.Exit(1)
	}

	runLog := store.NewRunLog(pool)
	if err := runLog.EnsureSchema(ctx); err != nil {
		slog.Error("failed to create runs schema", "error", err)
		os.Exit(1)
	}

	// Optional raw upload retention
	var blobs *store.FSBlobStore
	if cfg.Blob.KeepUploads {
		blobs, err = store.NewFSBlobStore(cfg.Blob.Dir)
		if err != nil {
			slog.Error("failed to create blob store", "dir", cfg.Blob.Dir, "error", err)
			os.Exit(1)
		}
		slog.Info("upload retention enabled", "dir", cfg.Blob.Dir)
	}

	service := core.NewService(pool, fieldStore, runLog)
	server := web.NewServer(service, fieldStore, runLog, blobs, cfg)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(cfg.Server.Addr()); err != nil && err != http.ErrServerClosed {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
