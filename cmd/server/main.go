package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"issue-tracker-service/internal/config"
	httpapi "issue-tracker-service/internal/http"
	"issue-tracker-service/internal/logging"
	"issue-tracker-service/internal/random"
	"issue-tracker-service/internal/repository/postgres"
	"issue-tracker-service/internal/server"
	"issue-tracker-service/internal/service"
	"issue-tracker-service/internal/storage"
)

func main() {
	// Load config
	cfg, err := config.Load()

	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Init logger
	logger := logging.NewLogger(cfg.Env)
	logger.Info("starting service", "env", cfg.Env)

	// Init DB
	db, err := postgres.NewDB(cfg.DB)

	if err != nil {
		logger.Error("failed to connect to db", "err", err)
		os.Exit(1)
	}

	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close db", "err", err)
		}
	}()

	// Run migrations
	if err := storage.RunMigrations(db, cfg.MigrationsDir); err != nil {
		logger.Error("failed to run migrations", "err", err)
		os.Exit(1)
	}

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	issueRepo := postgres.NewIssueRepository(db)
	commentRepo := postgres.NewCommentRepository(db)
	labelRepo := postgres.NewLabelRepository(db)
	historyRepo := postgres.NewHistoryRepository(db)
	reportRepo := postgres.NewReportRepository(db)

	// Random source
	randSource := random.NewCryptoRand()

	// Services
	authSvc := service.NewAuthService(userRepo, cfg.Auth, randSource)
	userSvc := service.NewUserService(userRepo)
	issueSvc := service.NewIssueService(issueRepo, userRepo, commentRepo, labelRepo, historyRepo)
	importSvc := service.NewImportService(issueRepo, userRepo)
	commentSvc := service.NewCommentService(commentRepo, issueRepo, userRepo)
	labelSvc := service.NewLabelService(labelRepo, issueRepo)
	reportSvc := service.NewReportService(reportRepo)

	// HTTP router
	router := httpapi.NewRouter(authSvc, userSvc, issueSvc, importSvc, commentSvc, labelSvc, reportSvc, logger)

	// HTTP server
	httpServer := server.NewHTTPServer(cfg.HTTP, router, logger)

	// Graceful shutdown
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error("http server error", "err", err)
		}
	}()

	logger.Info("server started", "addr", cfg.HTTP.Addr())

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)

	} else {
		logger.Info("server stopped gracefully")
	}
}
