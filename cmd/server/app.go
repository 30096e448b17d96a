package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/taskboard-api/internal/api"
	"github.com/phrazzld/taskboard-api/internal/api/middleware"
	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/platform/postgres"
	"github.com/phrazzld/taskboard-api/internal/platform/redis"
	"github.com/phrazzld/taskboard-api/internal/service"
	"github.com/phrazzld/taskboard-api/internal/service/auth"
	"github.com/phrazzld/taskboard-api/internal/store"
	goredis "github.com/redis/go-redis/v9"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config

	logger *slog.Logger
	db     *sql.DB

	// Stores
	userStore store.UserStore
	taskStore store.TaskStore

	// Services
	jwtService  auth.JWTService
	revocations auth.RevocationStore
	userService service.UserService
	taskService service.TaskService

	// redisClient is nil when revocations live in process memory.
	redisClient *goredis.Client

	// stopSweeper cancels the in-memory revocation sweeper.
	stopSweeper context.CancelFunc
}

// newApplication creates a new application instance with all dependencies initialized.
// The configuration, logger and database connection must be established first.
// The caller keeps ownership of db and closes it; on failure newApplication
// releases only what it opened itself.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes),
		slog.Int("refresh_token_lifetime_minutes", cfg.Auth.RefreshTokenLifetimeMinutes))

	app.userStore = postgres.NewPostgresUserStore(db, cfg.Auth.BCryptCost, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)
	txRunner := store.NewSQLTxRunner(db)

	if err := app.setupRevocations(ctx); err != nil {
		app.cleanup()
		return nil, err
	}

	app.userService, err = service.NewUserService(app.userStore, txRunner, auth.NewBcryptVerifier(), logger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}

	app.taskService, err = service.NewTaskService(app.taskStore, txRunner, logger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// setupRevocations picks the Redis revocation set when redis.url is
// configured and the in-memory set with a background sweeper otherwise.
func (app *application) setupRevocations(ctx context.Context) error {
	if app.config.Redis.URL != "" {
		client, err := redis.NewClient(ctx, app.config.Redis.URL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		app.redisClient = client
		app.revocations = redis.NewRevocationStore(client, app.logger)
		app.logger.Info("token revocations stored in redis")
		return nil
	}

	memory := auth.NewMemoryRevocationStore(app.logger)
	sweepCtx, cancel := context.WithCancel(ctx)
	app.stopSweeper = cancel
	go memory.Run(sweepCtx, time.Duration(app.config.Auth.RevocationSweepSeconds)*time.Second)

	app.revocations = memory
	app.logger.Info("token revocations stored in memory",
		slog.Int("sweep_seconds", app.config.Auth.RevocationSweepSeconds))
	return nil
}

// routes builds the API handlers from the application services.
func (app *application) routes() api.Routes {
	return api.Routes{
		Auth:  api.NewAuthHandler(app.userService, app.jwtService, app.revocations, app.logger),
		Tasks: api.NewTaskHandler(app.taskService, app.logger),
		Users: api.NewUserHandler(app.userService, app.logger),
		Gate:  middleware.NewAuthMiddleware(app.jwtService, app.userStore, app.revocations, app.logger),
	}
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := newRouter(app.routes(), app.config.Server.CORSOrigins, app.logger)

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases the resources the application opened: the revocation
// sweeper and the Redis client. The database belongs to the caller.
func (app *application) cleanup() {
	if app.stopSweeper != nil {
		app.stopSweeper()
		app.stopSweeper = nil
	}

	if app.redisClient != nil {
		if err := app.redisClient.Close(); err != nil {
			app.logger.Error("error closing redis client", slog.String("error", err.Error()))
		}
		app.redisClient = nil
	}

	app.logger.Info("application shutdown completed")
}
