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

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"github.com/fedsports/registration-system/config"
	"github.com/fedsports/registration-system/db"
	"github.com/fedsports/registration-system/handlers"
	"github.com/fedsports/registration-system/live"
	"github.com/fedsports/registration-system/middleware"
	"github.com/fedsports/registration-system/repositories"
	api "github.com/fedsports/registration-system/routes"
	"github.com/fedsports/registration-system/services"
	"github.com/fedsports/registration-system/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

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

	var uploader storage.FileUploader
	if cfg.UseR2() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized", slog.String("bucket", cfg.R2BucketName))
	} else {
		uploader, err = storage.NewLocalDiskUploader(cfg.AttachmentsDir)
		if err != nil {
			logger.Error("failed to initialize local attachment storage", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("local attachment storage initialized", slog.String("dir", cfg.AttachmentsDir))
	}

	hub := live.NewHub(logger)
	go hub.Run()
	logger.Info("roster feed hub started")

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	tenantRepo := repositories.NewPostgresTenantRepository(dbConn)
	athleteRepo := repositories.NewPostgresAthleteRepository(dbConn)
	eventRepo := repositories.NewPostgresEventRepository(dbConn)
	formRepo := repositories.NewPostgresFormRepository(dbConn)
	attachmentRepo := repositories.NewPostgresAttachmentRepository(dbConn)
	adhesionRepo := repositories.NewPostgresAdhesionRepository(dbConn)
	registrationRepo := repositories.NewPostgresRegistrationRepository(dbConn)
	categoryRepo := repositories.NewPostgresCategoryRepository(dbConn)
	calendarRepo := repositories.NewPostgresCalendarRepository(dbConn)
	paymentRepo := repositories.NewPostgresPaymentRepository(dbConn)
	logger.Info("repositories initialized")

	scopeService := services.NewScopeService(userRepo, tenantRepo)
	calendarService := services.NewCalendarService(calendarRepo, logger)
	attachmentService := services.NewAttachmentService(attachmentRepo, eventRepo, adhesionRepo, userRepo, athleteRepo, uploader, logger)
	formService := services.NewFormService(dbConn, formRepo)
	eventService := services.NewEventService(dbConn, eventRepo, formRepo, adhesionRepo, tenantRepo, attachmentService, calendarService, logger)
	adhesionService := services.NewAdhesionService(adhesionRepo, eventRepo, tenantRepo, scopeService, hub)
	registrationService := services.NewRegistrationService(dbConn, registrationRepo, eventRepo, adhesionRepo, athleteRepo, paymentRepo, scopeService, hub, logger)
	categoryService := services.NewCategoryService(categoryRepo)
	consolidationService := services.NewConsolidationService(registrationRepo, eventRepo, formRepo, tenantRepo, scopeService, logger)
	exportService := services.NewExportService(logger)
	paymentService := services.NewPaymentService(paymentRepo, eventRepo, scopeService)
	authService := services.NewAuthService(userRepo, cfg.JWTSecretKey, cfg.JWTTokenTTL)
	logger.Info("services initialized")

	authenticator := middleware.NewAuthenticator(cfg.JWTSecretKey)

	authHandler := handlers.NewAuthHandler(authService)
	eventHandler := handlers.NewEventHandler(eventService, formService)
	formHandler := handlers.NewFormHandler(formService)
	adhesionHandler := handlers.NewAdhesionHandler(adhesionService, userRepo)
	registrationHandler := handlers.NewRegistrationHandler(registrationService, userRepo)
	consolidationHandler := handlers.NewConsolidationHandler(consolidationService, exportService, userRepo)
	attachmentHandler := handlers.NewAttachmentHandler(attachmentService, userRepo, logger)
	categoryHandler := handlers.NewCategoryHandler(categoryService, athleteRepo)
	paymentHandler := handlers.NewPaymentHandler(paymentService, userRepo)
	webSocketHandler := handlers.NewWebSocketHandler(hub, logger)
	logger.Info("HTTP handlers initialized")

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		authenticator,
		authHandler,
		eventHandler,
		formHandler,
		adhesionHandler,
		registrationHandler,
		consolidationHandler,
		attachmentHandler,
		categoryHandler,
		paymentHandler,
		webSocketHandler,
	)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting server", slog.String("address", server.Addr))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("application exited")
}
