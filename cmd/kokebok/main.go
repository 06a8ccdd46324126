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

	"github.com/larsfv/kokebok/internal/database"
	"github.com/larsfv/kokebok/internal/logging"
	"github.com/larsfv/kokebok/internal/server"
	"github.com/larsfv/kokebok/internal/storage"
)

func main() {
	logger := logging.Setup(os.Getenv("KOKEBOK_LOG_LEVEL"))

	port := os.Getenv("KOKEBOK_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("KOKEBOK_DB_PATH")
	if dbPath == "" {
		dbPath = "kokebok.db"
	}

	db, err := database.Open(dbPath)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	images := storage.NewImageStore(storage.Config{
		Endpoint:      os.Getenv("KOKEBOK_S3_ENDPOINT"),
		Bucket:        os.Getenv("KOKEBOK_S3_BUCKET"),
		Region:        os.Getenv("KOKEBOK_S3_REGION"),
		AccessKey:     os.Getenv("KOKEBOK_S3_ACCESS_KEY"),
		SecretKey:     os.Getenv("KOKEBOK_S3_SECRET_KEY"),
		PublicBaseURL: os.Getenv("KOKEBOK_S3_PUBLIC_URL"),
	})
	if !images.Enabled() {
		logger.Info("image storage disabled, set KOKEBOK_S3_* to enable")
	}

	srv := server.New(db, images, logger)

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan struct{})
	go cleanupLoop(srv, logger, stop)

	go func() {
		fmt.Printf("Kokebok running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	close(stop)

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}

// cleanupLoop prunes expired sessions and stale rate-limit entries.
func cleanupLoop(srv *server.Server, logger *slog.Logger, stop <-chan struct{}) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n, err := srv.SessionStore().DeleteExpired()
			if err != nil {
				logger.Error("session cleanup", "error", err)
			} else if n > 0 {
				logger.Info("expired sessions removed", "count", n)
			}
			srv.RateLimiter().Cleanup()
		case <-stop:
			return
		}
	}
}
