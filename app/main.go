package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsendy/sendy-pipeline/app/api"
	"github.com/getsendy/sendy-pipeline/app/cfg"
	"github.com/getsendy/sendy-pipeline/app/database"
	"github.com/getsendy/sendy-pipeline/app/pipeline"
	"github.com/getsendy/sendy-pipeline/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting Sendy Pipeline server", "version", appCfg.Version)

	db, err := database.NewConnection(
		appCfg.DBHost, appCfg.DBPort, appCfg.DBUser,
		appCfg.DBPassword, appCfg.DBName)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("Connected to database")

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database migrations applied", "version", version, "dirty", dirty)

	packRepo := database.NewPackRepository(db)
	draftRepo := database.NewDraftRepository(db)

	// The sample ingestor is used unless a feed URL is configured.
	var ingestor pipeline.Ingestor
	if appCfg.SourceFeedURL != "" {
		httpClient := &http.Client{Timeout: 30 * time.Second}
		ingestor = pipeline.NewFeedIngestor(appCfg.SourceFeedURL, httpClient, appCfg.UserAgent)
		slog.Info("Using feed ingestion source", "url", appCfg.SourceFeedURL)
	}

	runner := pipeline.NewRunner(db, ingestor, nil, nil)

	scheduler := tasks.NewScheduler(runner)
	scheduler.Start()
	defer scheduler.Stop()

	apiHandler := api.NewHandler(packRepo, draftRepo, scheduler)
	server := api.NewServer(apiHandler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received shutdown signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	slog.Info("Shutdown complete")
}
