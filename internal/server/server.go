// Package server composes the dependencies the function shares across
// invocations.
//
// It owns the lifecycle of:
//   - configuration
//   - logger + optional New Relic service wrapper
//   - the guitar table, backed by the configured store driver
//   - the driver's client (DynamoDB, redis or a postgres pool)
//   - the http.Server used by the local HTTP runner
//
// Everything here is built once per cold start and reused by every
// invocation the runtime routes to the same process.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/deppfellow/guitars-serverless/internal/config"
	"github.com/deppfellow/guitars-serverless/internal/database"
	"github.com/deppfellow/guitars-serverless/internal/model"
	"github.com/deppfellow/guitars-serverless/internal/store"
	"github.com/newrelic/go-agent/v3/integrations/nrredis-v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	loggerPkg "github.com/deppfellow/guitars-serverless/internal/logger"
)

// Server is the application container. It is not the HTTP server itself.
type Server struct {
	Config        *config.Config
	Logger        *zerolog.Logger
	LoggerService *loggerPkg.LoggerService

	// Table is the guitar table every operation talks to.
	Table store.Table[model.Guitar]

	// DB is set for the postgres driver only.
	DB *database.Database

	// Redis is set for the redis driver only.
	Redis *redis.Client

	httpServer *http.Server
}

// New builds the store client for cfg.Store.Driver and wraps it in a
// table. Only the postgres driver touches the network here; the other
// clients connect lazily on first use.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) (*Server, error) {
	server := &Server{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
	}

	switch cfg.Store.Driver {
	case config.DriverDynamoDB:
		client, err := store.NewDynamoDBClient(ctx, cfg.AWS)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize dynamodb client: %w", err)
		}
		server.Table = store.NewDynamoDBTable[model.Guitar](client, cfg.Store.Table, cfg.Store.KeyAttribute)

	case config.DriverRedis:
		server.Redis = NewRedisClient(cfg.Redis, loggerService)
		server.Table = store.NewRedisTable[model.Guitar](server.Redis, cfg.Store.Table)

	case config.DriverPostgres:
		if cfg.Database.AutoMigrate {
			if err := database.Migrate(ctx, logger, cfg); err != nil {
				return nil, fmt.Errorf("failed to migrate database: %w", err)
			}
		}

		db, err := database.New(ctx, cfg, logger, loggerService)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		server.DB = db
		server.Table = store.NewPostgresTable[model.Guitar](db.Pool, cfg.Store.Table)

	case config.DriverMemory:
		server.Table = store.NewMemoryTable[model.Guitar]()

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	logger.Info().
		Str("driver", cfg.Store.Driver).
		Str("table", cfg.Store.Table).
		Msg("store initialized")

	return server, nil
}

// NewRedisClient creates a client with retries disabled. A failed command
// surfaces to the caller instead of being replayed.
func NewRedisClient(cfg config.RedisConfig, loggerService *loggerPkg.LoggerService) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:       cfg.Address,
		Password:   cfg.Password,
		DB:         cfg.DB,
		MaxRetries: -1,
	})

	if loggerService != nil && loggerService.GetApplication() != nil {
		client.AddHook(nrredis.NewHook(client.Options()))
	}

	return client
}

// SetupHTTPServer configures the http.Server for the local runner.
func (s *Server) SetupHTTPServer(handler http.Handler) {
	s.httpServer = &http.Server{
		Addr:         ":" + s.Config.Server.Port,
		Handler:      handler,
		ReadTimeout:  time.Duration(s.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.Config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.Config.Server.IdleTimeout) * time.Second,
	}
}

// Start runs the HTTP server. SetupHTTPServer must be called first.
func (s *Server) Start() error {
	if s.httpServer == nil {
		return errors.New("HTTP server not initialized")
	}

	s.Logger.Info().
		Str("port", s.Config.Server.Port).
		Str("env", s.Config.Primary.Env).
		Msg("starting server")

	return s.httpServer.ListenAndServe()
}

// Shutdown stops the HTTP server, if any, and closes the store client.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown HTTP server: %w", err)
		}
	}

	if s.DB != nil {
		if err := s.DB.Close(); err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			return fmt.Errorf("failed to close redis client: %w", err)
		}
	}

	return nil
}
