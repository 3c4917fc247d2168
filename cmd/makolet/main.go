package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/noamsh/makolet/internal/config"
	"github.com/noamsh/makolet/internal/database"
	"github.com/noamsh/makolet/internal/logging"
	"github.com/noamsh/makolet/internal/server"
)

func main() {
	cfg, err := config.Load(os.Getenv("MAKOLET_CONFIG"))
	if err != nil {
		logging.Setup("info").Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.LogLevel)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	srv := server.New(db, logger)

	if err := srv.Scheduler().Start(); err != nil {
		logger.Error("failed to start reconcile scheduler", "error", err)
		os.Exit(1)
	}
	defer srv.Scheduler().Stop()

	backupCtx, cancelBackup := context.WithCancel(context.Background())
	srv.BackupManager().Start(backupCtx)
	defer func() {
		cancelBackup()
		srv.BackupManager().Stop()
	}()

	// Drop idle rate limiter entries in the background.
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			srv.RateLimiter().Cleanup()
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("makolet listening", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
