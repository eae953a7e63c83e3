package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"recruitsync_backend/database"
	"recruitsync_backend/internal/auth"
	"recruitsync_backend/internal/config"
	"recruitsync_backend/internal/email"
	"recruitsync_backend/internal/handlers"
	"recruitsync_backend/internal/lock"
	"recruitsync_backend/internal/logger"
	"recruitsync_backend/internal/metrics"
	"recruitsync_backend/internal/middleware"
	"recruitsync_backend/internal/oauth"
	"recruitsync_backend/internal/platforms"
	"recruitsync_backend/internal/repositories"
	"recruitsync_backend/internal/routes"
	"recruitsync_backend/internal/secrets"
	"recruitsync_backend/internal/services"
	"recruitsync_backend/internal/validator"
	"recruitsync_backend/internal/workers"
	"recruitsync_backend/pkg/apperrors"
)

const shutdownTimeout = 15 * time.Second

// App holds everything built from one configuration.
type App struct {
	cfg      *config.Config
	db       *gorm.DB
	redis    *redis.Client
	metrics  *metrics.Metrics
	Services *services.ServiceContainer
}

// New connects to the stores named by cfg and wires repositories and services
// on top of them.
func New(cfg *config.Config) (*App, error) {
	apperrors.SetDebug(!cfg.IsProduction())

	if err := secrets.Configure(cfg.Secrets.Key); err != nil {
		return nil, fmt.Errorf("configure secrets: %w", err)
	}
	if cfg.Secrets.Key == "" {
		logger.Warn("secrets.key is empty, platform credentials are stored unencrypted")
	}

	gormDB, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(gormDB); err != nil {
			return nil, err
		}
		if err := database.Seed(gormDB); err != nil {
			return nil, err
		}
	}

	a := &App{cfg: cfg, db: gormDB, metrics: metrics.New()}
	a.Services = a.initializeServices(a.initializeLocker())
	return a, nil
}

func (a *App) initializeLocker() lock.Locker {
	if a.cfg.Redis.Address == "" {
		logger.Info("Using in-process token refresh lock")
		return lock.NewLocal()
	}

	a.redis = redis.NewClient(&redis.Options{
		Addr:     a.cfg.Redis.Address,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	})
	logger.Info("Using Redis token refresh lock", "address", a.cfg.Redis.Address)
	return lock.NewRedis(a.redis)
}

func (a *App) initializeServices(locker lock.Locker) *services.ServiceContainer {
	cfg := a.cfg

	smtp := email.ConfigFrom(cfg)
	if !smtp.Enabled() {
		logger.Warn("SMTP is not configured, emails are logged only")
	}
	notifier := email.NewNotifier(email.NewProvider(smtp), cfg.Email.AdminEmail)

	registry := platforms.DefaultRegistry(cfg.Platforms.Feeds)
	oauthManager := oauth.NewManager(cfg.OAuth.Providers, cfg.OAuth.StateSecret)

	connRepo := repositories.NewConnectionRepository(a.db)
	candidateRepo := repositories.NewCandidateRepository(a.db)
	syncLogRepo := repositories.NewSyncLogRepository(a.db)
	hireRepo := repositories.NewHireRepository(a.db)

	tokenService := services.NewTokenService(connRepo, oauthManager, locker, a.metrics, cfg.TokenRefreshBuffer(), cfg.LockTTL())
	syncService := services.NewSyncService(connRepo, candidateRepo, syncLogRepo, registry, tokenService, notifier, a.metrics, cfg.FetchTimeout())
	hireService := services.NewHireService(hireRepo, notifier, a.metrics)

	return &services.ServiceContainer{
		ConnectionService: services.NewConnectionService(connRepo, syncLogRepo, registry, oauthManager),
		CandidateService:  services.NewCandidateService(candidateRepo, hireService),
		SyncService:       syncService,
		HireService:       hireService,
		TokenService:      tokenService,
	}
}

func (a *App) initializeHandlers() *handlers.AppHandlers {
	jwtManager := auth.NewJWTManager(a.cfg.JWT.Secret, time.Duration(a.cfg.JWT.TTL)*time.Minute)
	base := handlers.NewBaseHandler(validator.New(), middleware.AuthMiddleware(jwtManager))

	return &handlers.AppHandlers{
		ConnectionHandler: handlers.NewConnectionHandler(base, a.Services.ConnectionService),
		OAuthHandler:      handlers.NewOAuthHandler(base, a.Services.ConnectionService),
		SyncHandler:       handlers.NewSyncHandler(base, a.Services.SyncService),
		CandidateHandler:  handlers.NewCandidateHandler(base, a.Services.CandidateService),
	}
}

// Router builds the gin engine with every route registered.
func (a *App) Router() (*gin.Engine, error) {
	if a.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	sqlDB, err := a.db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get *sql.DB from gorm: %w", err)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware(a.cfg.Server.CORSOrigins))

	routes.RegisterRoutes(router, a.initializeHandlers(), sqlDB, a.metrics.Handler())
	return router, nil
}

// Serve runs the HTTP server and the background workers until ctx is done or
// SIGINT/SIGTERM arrives.
func (a *App) Serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	router, err := a.Router()
	if err != nil {
		return err
	}

	if a.cfg.Sync.Enabled {
		syncWorker := workers.NewSyncWorker(a.Services.SyncService, a.cfg.Sync.Schedule)
		if err := syncWorker.Start(ctx); err != nil {
			return err
		}
		defer syncWorker.Stop()
	} else {
		logger.Info("Scheduled sync is disabled")
	}

	tokenWorker := workers.NewTokenRefreshWorker(
		repositories.NewConnectionRepository(a.db),
		a.Services.TokenService,
		a.cfg.TokenRefreshBuffer()/2,
	)
	tokenWorker.Start(ctx)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server startup error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

// Close releases the database pool and the Redis client.
func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			logger.Warn("Failed to close redis client", "error", err)
		}
	}
	if sqlDB, err := a.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Warn("Failed to close database", "error", err)
		}
	}
}
