package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"mindmate/internal/app"
	"mindmate/internal/config"
)

const version = "1.0.0"

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}
	cmd := os.Args[1]

	if cmd == "version" {
		fmt.Println("mindmated", version)
		return
	}

	cfgPath := os.Getenv("MM_CONFIG")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, err := newLogger(cfg.Log.Level)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch cmd {
	case "serve":
		runServe(ctx, cfg, logger)
	case "worker":
		runWorker(ctx, cfg, logger)
	default:
		usage()
	}
}

func runServe(ctx context.Context, cfg config.Config, logger *zap.Logger) {
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("app init error: %v", err)
	}
	defer a.Close()

	logger.Info("mindmated serving", zap.String("addr", cfg.HTTP.Addr))
	if err := a.Serve(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
}

func runWorker(ctx context.Context, cfg config.Config, logger *zap.Logger) {
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("app init error: %v", err)
	}
	defer a.Close()

	logger.Info("log worker started")
	if err := a.LogWorker(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("worker error: %v", err)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		parsed = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(parsed)
	return cfg.Build()
}

func usage() {
	fmt.Println("usage: mindmated <serve|worker|version>")
	fmt.Println("  serve   run the triage HTTP API")
	fmt.Println("  worker  drain queued triage records into the database")
	fmt.Println("  version print the version")
}
