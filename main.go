package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/Binayak012/StillGood/internal/config"
	"github.com/Binayak012/StillGood/internal/database"
	"github.com/Binayak012/StillGood/internal/server"
	"github.com/Binayak012/StillGood/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	setupLogging(cfg.LogLevel)

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		slog.Error("opening database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("running migrations", "error", err)
		os.Exit(1)
	}

	srv, err := server.New(db, cfg)
	if err != nil {
		slog.Error("creating server", "error", err)
		os.Exit(1)
	}

	scheduler := services.NewSweepScheduler(srv.Sweeper(), cfg.SweepInterval)
	scheduler.Start()
	defer scheduler.Stop()

	if err := srv.Start(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func setupLogging(level string) {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))
}
