package persistence

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/config"
)

// NewBlobStore opens the backend selected by cfg.Store.Backend.
func NewBlobStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (BlobStore, error) {
	prefix := cfg.Store.KeyPrefix
	switch cfg.Store.Backend {
	case config.BackendMemory, "":
		logger.Info("using in-memory blob store; data is lost on restart")
		return NewMemoryStore(), nil
	case config.BackendRedis:
		return NewRedis(cfg.Redis, prefix, logger), nil
	case config.BackendPostgres:
		pg, err := NewPostgres(ctx, cfg.Postgres, prefix, logger)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if cfg.Postgres.RunMigrations {
			if err := RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
				_ = pg.Close()
				return nil, err
			}
		}
		return pg, nil
	case config.BackendBadger:
		return NewBadger(cfg.Badger, prefix, logger)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
