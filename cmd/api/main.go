package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dan9191/balance-service/internal/config"
	"github.com/Dan9191/balance-service/internal/handler"
	"github.com/Dan9191/balance-service/internal/repository"
	"github.com/Dan9191/balance-service/internal/scheduler"
	"github.com/Dan9191/balance-service/internal/service"
	"github.com/Dan9191/balance-service/internal/utils/email"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db, logger)
	svc := service.NewService(repo, logger)
	h := handler.NewHandler(svc, repo, logger, cfg.IsDevelopment())

	// Schedule the debt digest
	var digest *scheduler.DigestJob
	if cfg.DigestEnabled() {
		sender := email.NewSender(cfg, logger)
		digest = scheduler.NewDigestJob(svc, sender, cfg.DigestRecipients, 5*time.Minute, logger)
		if err := digest.Start(cfg.DigestSchedule); err != nil {
			logger.Fatalf("Failed to schedule debt digest: %v", err)
		}
	}

	// Setup router
	r := mux.NewRouter()
	h.RegisterRoutes(r)

	accessLog := logger.Writer()
	defer accessLog.Close()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler.Middleware(r, logger, accessLog, cfg.CORSOrigins),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for shutdown signal or a listener failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		logger.Infof("Received %s", sig)
	case err := <-serverErr:
		logger.Errorf("Server failed: %v", err)
	}

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
	}
	if digest != nil {
		digest.Stop()
	}
	logger.Info("Server stopped")
}
