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

	"github.com/lysyi3m/comic-watch/app/api"
	"github.com/lysyi3m/comic-watch/app/cfg"
	"github.com/lysyi3m/comic-watch/app/database"
	"github.com/lysyi3m/comic-watch/app/feed"
	"github.com/lysyi3m/comic-watch/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	if appCfg.Check {
		os.Exit(runCheck(appCfg, os.Stdout, os.Stderr))
	}

	if err := run(appCfg); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(appCfg *cfg.Cfg) error {
	slog.Info("Starting Comic Watch", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	slog.Info("Connected to database", "path", appCfg.DBPath)

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Info("Database migrations applied", "version", version, "dirty", dirty)

	configCache := feed.NewConfigCache(appCfg.ConfigPath)
	if err := configCache.Run(); err != nil {
		return fmt.Errorf("failed to load feed configuration: %w", err)
	}

	feedRepo := database.NewFeedRepository(db)
	eventLog := feed.NewEventLog(appCfg.DataDir)

	scheduler := tasks.NewScheduler(configCache, feedRepo, eventLog, &http.Client{},
		feed.NewParser(), feed.NewFilterer(), feed.NewOpener())
	scheduler.Start()
	defer scheduler.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher := feed.NewConfigWatcher(configCache, scheduler.SyncConfigs)
	go func() {
		if err := watcher.Run(ctx); err != nil {
			slog.Error("Config watcher stopped", "error", err)
		}
	}()

	handler := api.NewHandler(configCache, feedRepo, eventLog, scheduler)
	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      api.NewServer(handler, appCfg.APIAccessKey),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("Received shutdown signal")
	case err := <-serverErr:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	slog.Info("Comic Watch shutdown complete")
	return nil
}
