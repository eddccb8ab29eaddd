package container

import (
	"context"
	"fmt"
	"time"

	"stressbox/internal/config"
	"stressbox/internal/service"
	"stressbox/internal/store"
	"stressbox/pkg/database"
	"stressbox/pkg/logger"
	"stressbox/pkg/redis"
)

const connectTimeout = 10 * time.Second

// Container holds all application dependencies
type Container struct {
	Config         *config.Config
	Logger         *logger.Logger
	Store          store.Store
	Backend        store.Backend
	VisitorService service.VisitorService
}

// New creates a new dependency injection container. A store that cannot be
// reached is replaced by the null store so the pages keep working.
func New(cfg *config.Config, logger *logger.Logger) (*Container, error) {
	st, backend, err := openStore(cfg, logger)
	if err != nil {
		logger.WithError(err).WithField("backend", string(cfg.StoreBackend)).
			Warn("Failed to initialize store, proceeding without visitor tracking")
		st, backend = store.NewNullStore(), store.BackendNone
	} else {
		logger.WithField("backend", string(backend)).Info("Store initialized successfully")
	}

	visitorService := service.NewVisitorService(st, logger,
		service.WithAtomicCounters(cfg.AtomicCounters),
	)

	return &Container{
		Config:         cfg,
		Logger:         logger,
		Store:          st,
		Backend:        backend,
		VisitorService: visitorService,
	}, nil
}

func openStore(cfg *config.Config, logger *logger.Logger) (store.Store, store.Backend, error) {
	switch cfg.StoreBackend {
	case store.BackendRedis:
		if cfg.RedisURL == "" {
			return nil, "", fmt.Errorf("REDIS_URL is not configured")
		}
		client, err := redis.NewClient(cfg.RedisURL, cfg.KVNamespace, logger.Logger)
		if err != nil {
			return nil, "", err
		}
		logger.WithField("namespace", client.KeyBuilder.GetPrefix()).Debug("Redis store namespace")
		return store.NewRedisStore(client), store.BackendRedis, nil

	case store.BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, "", fmt.Errorf("DATABASE_URL is not configured")
		}
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL, cfg.DatabasePool)
		if err != nil {
			return nil, "", err
		}
		if cfg.AutoMigrate {
			if err := db.EnsureSchema(ctx); err != nil {
				db.Close()
				return nil, "", err
			}
		}
		return store.NewPostgresStore(db, cfg.KVNamespace), store.BackendPostgres, nil

	case store.BackendMemory:
		return store.NewMemoryStore(), store.BackendMemory, nil

	default:
		logger.Info("No store configured, visitor tracking disabled")
		return store.NewNullStore(), store.BackendNone, nil
	}
}

// Close releases the store connection
func (c *Container) Close() error {
	if c.Store == nil {
		return nil
	}
	return c.Store.Close()
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.Logger
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.Config
}

// TrackingEnabled reports whether visits are persisted
func (c *Container) TrackingEnabled() bool {
	return c.Backend != store.BackendNone
}
