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

	_ "github.com/lib/pq"

	"github.com/luminospark/asambal-system/auth"
	"github.com/luminospark/asambal-system/config"
	"github.com/luminospark/asambal-system/db"
	"github.com/luminospark/asambal-system/docstore"
	"github.com/luminospark/asambal-system/handlers"
	"github.com/luminospark/asambal-system/repositories"
	api "github.com/luminospark/asambal-system/routes"
	"github.com/luminospark/asambal-system/services"
	"github.com/luminospark/asambal-system/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	store := docstore.NewPostgresStore(dbConn)
	if err := docstore.EnsureSchema(context.Background(), dbConn); err != nil {
		logger.Error("failed to ensure document schema", slog.Any("error", err))
		os.Exit(1)
	}

	uploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2Bucket,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	})
	if err != nil {
		logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Cloudflare R2 uploader initialized")

	userRepo := repositories.NewUserRepository(store)
	clubRepo := repositories.NewClubRepository(store)
	coachRepo := repositories.NewCoachRepository(store)
	coachRequestRepo := repositories.NewCoachRequestRepository(store)
	playerRepo := repositories.NewPlayerRepository(store)
	scholarshipRepo := repositories.NewScholarshipRepository(store)
	transferRepo := repositories.NewTransferRepository(store)
	campaignRepo := repositories.NewCampaignRepository(store)
	playerTickets := repositories.NewEnrollmentTicketRepository(store)
	clubTickets := repositories.NewMembershipTicketRepository(store)
	insuranceTickets := repositories.NewInsuranceTicketRepository(store)
	categoryRepo := repositories.NewCategoryRepository(store)
	logger.Info("repositories initialized")

	tokens := auth.NewTokenManager(cfg.AccessSecret, cfg.RefreshSecret)
	credentials := auth.NewCredentialStore(store)
	converter := storage.NewWebPConverter()

	emailService := services.NewEmailService(cfg)
	authService := services.NewAuthService(store, userRepo, credentials, tokens)
	clubService := services.NewClubService(store, clubRepo, userRepo, coachRepo, playerRepo, emailService, uploader, converter, logger)
	coachService := services.NewCoachService(store, coachRepo, coachRequestRepo, userRepo, clubRepo, credentials, emailService, logger)
	playerService := services.NewPlayerService(store, playerRepo, userRepo, clubRepo, transferRepo, credentials, emailService, logger)
	scholarshipService := services.NewScholarshipService(store, scholarshipRepo, playerRepo)
	transferService := services.NewTransferService(store, transferRepo, playerRepo, userRepo)
	campaignService := services.NewCampaignService(store, campaignRepo, playerRepo, clubRepo, playerTickets, clubTickets, logger)
	ticketService := services.NewTicketService(store, playerTickets, clubTickets, playerRepo, clubRepo)
	insuranceService := services.NewInsuranceService(store, campaignRepo, coachRepo, insuranceTickets, logger)
	asambalService := services.NewAsambalService(clubService, userRepo, clubRepo, coachRepo, playerRepo, transferRepo, scholarshipRepo)
	categoryService := services.NewCategoryService(categoryRepo)
	logger.Info("services initialized")

	router := api.InitRoutes(api.Handlers{
		Auth:    handlers.NewAuthHandler(authService),
		Asambal: handlers.NewAsambalHandler(asambalService, clubService, playerService, scholarshipService, transferService, campaignService, insuranceService, ticketService, categoryService),
		Club:    handlers.NewClubHandler(clubService, coachService, playerService, ticketService),
		Coach:   handlers.NewCoachHandler(coachService, playerService, insuranceService),
		Player:  handlers.NewPlayerHandler(playerService, transferService, ticketService),
	}, tokens)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  time.Minute,
	}

	shutdownError := make(chan error)
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit
		logger.Info("shutting down server", slog.String("signal", s.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		shutdownError <- server.Shutdown(ctx)
	}()

	logger.Info("starting server", slog.String("addr", server.Addr))
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", slog.Any("error", err))
		os.Exit(1)
	}
	if err := <-shutdownError; err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}
