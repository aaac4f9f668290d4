package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/isati-sh/daycare-sub001/internal/config"
	"github.com/isati-sh/daycare-sub001/internal/database"
	"github.com/isati-sh/daycare-sub001/internal/handlers"
	"github.com/isati-sh/daycare-sub001/internal/logger"
	"github.com/isati-sh/daycare-sub001/internal/repository"
	"github.com/isati-sh/daycare-sub001/internal/security"
	"github.com/isati-sh/daycare-sub001/internal/service"
	"github.com/isati-sh/daycare-sub001/internal/storage/memory"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.Configure(logger.Config{
		Level:  cfg.Logging.Level,
		Pretty: cfg.Logging.Format != "json",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Serve /readyz while initializing; everything else gets 503 until ready
	startup := handlers.NewStartupStatus(
		handlers.StepDatabase,
		handlers.StepMigrations,
		handlers.StepBootstrap,
		handlers.StepServices,
	)
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handlers.Logging(log)(startup),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	store, closeStore, err := openStore(ctx, cfg, startup, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize storage")
	}
	defer closeStore()

	tokens := security.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionDuration)
	authService := service.NewAuthService(store.Accounts, tokens, log)
	accountService := service.NewAccountService(store.Accounts, time.Now, log)
	enrollmentService := service.NewEnrollmentService(store, time.Now, log)
	dailyLogService := service.NewDailyLogService(store, time.Now, log)

	startup.SetCurrentStep(handlers.StepBootstrap)
	if cfg.Bootstrap.AdminEmail != "" {
		admin, err := accountService.EnsureAdmin(ctx, cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword, cfg.Bootstrap.AdminName)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create bootstrap admin")
		}
		log.Info().Str("account_id", admin.ID).Str("email", admin.Email).Msg("Bootstrap admin ready")
	}
	startup.CompleteStep(handlers.StepBootstrap)

	startup.SetCurrentStep(handlers.StepServices)
	csrf := security.NewCSRFGenerator(cfg.Auth.CSRFSecret)
	limiter := security.NewRateLimiter(ctx, cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateWindow)
	router := handlers.NewRouter(handlers.Handlers{
		Middleware: handlers.NewMiddleware(authService, csrf, limiter),
		Auth:       handlers.NewAuthHandler(authService, accountService, csrf),
		Children:   handlers.NewChildHandler(enrollmentService, dailyLogService),
		Admin:      handlers.NewAdminHandler(accountService, enrollmentService),
	})
	startup.CompleteStep(handlers.StepServices)
	startup.MarkReady(router)
	log.Info().Msg("Server ready")

	<-ctx.Done()
	log.Info().Msg("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}

// openStore connects to the configured database and runs migrations, or
// returns the in-memory store for DATABASE_TYPE=memory.
func openStore(ctx context.Context, cfg *config.Config, startup *handlers.StartupStatus, log zerolog.Logger) (service.Store, func(), error) {
	startup.SetCurrentStep(handlers.StepDatabase)
	if strings.EqualFold(cfg.Database.Type, "memory") {
		log.Warn().Msg("Using in-memory storage; data is lost on restart")
		startup.CompleteStep(handlers.StepDatabase)
		startup.CompleteStep(handlers.StepMigrations)
		return memory.New().Ports(), func() {}, nil
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return service.Store{}, nil, err
	}
	log.Info().Str("type", cfg.Database.Type).Msg("Database connection established")
	startup.CompleteStep(handlers.StepDatabase)

	startup.SetCurrentStep(handlers.StepMigrations)
	if err := db.RunMigrations(ctx, cfg.Database.MigrationsPath); err != nil {
		db.Close()
		return service.Store{}, nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	startup.CompleteStep(handlers.StepMigrations)

	return repository.NewStore(db), func() { db.Close() }, nil
}
