package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/postcraft-api/internal/api"
	apiMiddleware "github.com/phrazzld/postcraft-api/internal/api/middleware"
	"github.com/phrazzld/postcraft-api/internal/config"
	"github.com/phrazzld/postcraft-api/internal/content"
	"github.com/phrazzld/postcraft-api/internal/generation"
	"github.com/phrazzld/postcraft-api/internal/platform/gemini"
	"github.com/phrazzld/postcraft-api/internal/platform/metrics"
	"github.com/phrazzld/postcraft-api/internal/platform/postgres"
	"github.com/phrazzld/postcraft-api/internal/redact"
	"github.com/phrazzld/postcraft-api/internal/secret"
	"github.com/phrazzld/postcraft-api/internal/service"
	"github.com/phrazzld/postcraft-api/internal/service/auth"
)

// application holds the shared dependencies so they can be built once and
// released together on shutdown.
type application struct {
	config  *config.Config
	logger  *slog.Logger
	db      *sql.DB
	metrics *metrics.Registry

	authHandler    *api.AuthHandler
	profileHandler *api.ProfileHandler
	contentHandler *api.ContentHandler
	authMiddleware *apiMiddleware.AuthMiddleware
}

// newApplication wires stores, the generation core and the services.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config:  cfg,
		logger:  logger,
		db:      db,
		metrics: metrics.New(),
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	sealer, err := secret.NewSealer(cfg.Auth.KeyEncryptionSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize key sealer: %w", err)
	}

	userStore := postgres.NewPostgresUserStore(db, logger)
	profileStore := postgres.NewPostgresProfileStore(db, logger)
	usageStore := postgres.NewPostgresUsageStore(db, logger)
	draftStore := postgres.NewPostgresDraftStore(db, logger)
	logStore := postgres.NewPostgresGenerationLogStore(db, logger)

	generator, fetcher, err := newGenerationCore(cfg, logger, app.metrics)
	if err != nil {
		return nil, err
	}

	userService, err := service.NewUserService(
		userStore,
		profileStore,
		auth.NewBcryptHasher(cfg.Auth.BcryptCost),
		jwtService,
		db,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}

	profileService, err := service.NewProfileService(
		profileStore,
		usageStore,
		sealer,
		secret.Hint,
		cfg.Quota.MonthlyLimit,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile service: %w", err)
	}

	contentService, err := service.NewContentService(service.ContentDeps{
		Generator:    generator,
		Source:       fetcher,
		Profiles:     profileStore,
		Usage:        usageStore,
		Drafts:       draftStore,
		Logs:         logStore,
		Keys:         sealer,
		MonthlyLimit: cfg.Quota.MonthlyLimit,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create content service: %w", err)
	}

	app.authHandler = api.NewAuthHandler(userService)
	app.profileHandler = api.NewProfileHandler(profileService)
	app.contentHandler = api.NewContentHandler(contentService)
	app.authMiddleware = apiMiddleware.NewAuthMiddleware(jwtService)

	logger.Info("application initialized",
		slog.String("model", cfg.LLM.ModelName),
		slog.Int("monthly_limit", cfg.Quota.MonthlyLimit))
	return app, nil
}

// newGenerationCore builds the model factory, the generation service and
// the content fetcher. Each constructor tags its own component on logger.
func newGenerationCore(
	cfg *config.Config,
	logger *slog.Logger,
	observer generation.Observer,
) (*generation.Service, *content.Fetcher, error) {
	models, err := gemini.NewModelFactory(logger, cfg.LLM)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize model factory: %w", err)
	}

	generator, err := generation.NewService(models, retryConfig(cfg.LLM),
		generation.WithObserver(observer),
		generation.WithLogger(logger))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize generation service: %w", err)
	}

	return generator, content.NewFetcher(cfg.Content, logger), nil
}

// retryConfig converts the LLM settings into the generation retry policy.
func retryConfig(cfg config.LLMConfig) generation.RetryConfig {
	rc := generation.DefaultRetryConfig()
	rc.MaxRetries = cfg.MaxRetries
	rc.InitialBackoff = time.Duration(cfg.InitialBackoffMs) * time.Millisecond
	rc.BackoffMultiplier = cfg.BackoffMultiplier
	rc.Jitter = cfg.BackoffJitter
	rc.AttemptTimeout = time.Duration(cfg.AttemptTimeoutSeconds) * time.Second
	return rc
}

// Run serves HTTP until ctx is canceled, then shuts down.
func (app *application) Run(ctx context.Context) error {
	defer app.cleanup()

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", redact.Error(err)))
		}
	}
	app.logger.Info("application shutdown completed")
}
