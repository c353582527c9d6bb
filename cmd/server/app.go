package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/receipt-api/internal/api"
	"github.com/phrazzld/receipt-api/internal/config"
	"github.com/phrazzld/receipt-api/internal/media"
	"github.com/phrazzld/receipt-api/internal/platform/metrics"
	"github.com/phrazzld/receipt-api/internal/platform/postgres"
	"github.com/phrazzld/receipt-api/internal/service"
	"github.com/phrazzld/receipt-api/internal/service/auth"
	"github.com/phrazzld/receipt-api/internal/store"
	"github.com/redis/go-redis/v9"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores
	userStore      store.UserStore
	businessStore  store.BusinessStore
	receiptStore   store.ReceiptStore
	invoiceStore   store.InvoiceStore
	challengeStore store.ChallengeStore

	// Services
	jwtService      auth.JWTService
	revoker         auth.TokenRevoker
	userService     service.UserService
	businessService service.BusinessService
	documentService service.DocumentService
	disputeService  service.DisputeService
	mediaService    api.LogoUploader

	// localMediaDir is served under Media.PublicPath when the local backend is used.
	localMediaDir string

	metrics     *metrics.Metrics
	redisClient redis.UniversalClient
}

// newApplication creates a new application instance with all dependencies initialized.
// It accepts core dependencies like configuration, logger, and database connection that
// must be established before application initialization.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config:  cfg,
		logger:  logger,
		db:      db,
		metrics: metrics.New(),
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes,
		"refresh_token_lifetime_minutes", cfg.Auth.RefreshTokenLifetimeMinutes)

	app.revoker, err = app.setupRevoker(ctx)
	if err != nil {
		return nil, err
	}

	app.userStore = postgres.NewPostgresUserStore(db, cfg.Auth.BCryptCost, logger)
	app.businessStore = postgres.NewPostgresBusinessStore(db, logger)
	app.receiptStore = postgres.NewPostgresReceiptStore(db, logger)
	app.invoiceStore = postgres.NewPostgresInvoiceStore(db, logger)
	app.challengeStore = postgres.NewPostgresChallengeStore(db, logger)

	app.userService = service.NewUserService(app.userStore, auth.NewBcryptVerifier(), logger)
	app.businessService = service.NewBusinessService(app.businessStore, logger)
	app.documentService = service.NewDocumentService(
		app.businessStore,
		app.receiptStore,
		app.invoiceStore,
		app.metrics,
		logger,
	)
	app.disputeService = service.NewDisputeService(
		store.NewTransactor(db),
		app.businessStore,
		app.receiptStore,
		app.invoiceStore,
		app.challengeStore,
		app.metrics,
		logger,
	)

	if err := app.setupMedia(ctx); err != nil {
		return nil, err
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// setupRevoker keeps revoked token ids in Redis when configured, otherwise in memory.
func (app *application) setupRevoker(ctx context.Context) (auth.TokenRevoker, error) {
	rc := app.config.Redis
	if rc.Addr == "" {
		app.logger.Info("Token revocation uses process memory")
		return auth.NewMemoryRevoker(), nil
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    []string{rc.Addr},
		Password: rc.Password,
		DB:       rc.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", rc.Addr, err)
	}

	app.redisClient = client
	app.logger.Info("Token revocation uses redis", "addr", rc.Addr)
	return auth.NewRedisRevoker(client), nil
}

func (app *application) setupMedia(ctx context.Context) error {
	mc := app.config.Media

	var mediaStore media.MediaStore
	switch mc.Backend {
	case "minio":
		minioStore, err := media.NewMinioStore(ctx, mc)
		if err != nil {
			return fmt.Errorf("failed to initialize minio media store: %w", err)
		}
		mediaStore = minioStore
	default:
		localStore, err := media.NewLocalStore(mc.LocalDir, mc.PublicPath)
		if err != nil {
			return fmt.Errorf("failed to initialize local media store: %w", err)
		}
		mediaStore = localStore
		app.localMediaDir = localStore.Dir()
	}

	processor := media.NewProcessor(mc.MaxUploadBytes, mc.MaxDimension, mc.JPEGQuality)
	if mc.MaxPixels > 0 {
		processor.MaxPixels = mc.MaxPixels
	}
	app.mediaService = media.NewService(processor, mediaStore, app.logger)
	app.logger.Info("Media storage initialized", "backend", mc.Backend)
	return nil
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.redisClient != nil {
		if err := app.redisClient.Close(); err != nil {
			app.logger.Error("Error closing redis client", "error", err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
