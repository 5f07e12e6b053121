package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/conduit-lang/pagemeta/internal/cache"
	"github.com/conduit-lang/pagemeta/internal/config"
)

// Open builds the post lookup for the configured backend. memory and redis
// are cache-only stores; sqlite and postgres read through an in-process
// cache. The returned close func releases every connection.
func Open(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (*Posts, func() error, error) {
	cacheConfig := cache.DefaultConfig()

	switch cfg.Backend {
	case config.BackendMemory:
		c := cache.NewMemory(cacheConfig)
		return NewPosts(c, nil, cfg.TTL, logger), c.Close, nil

	case config.BackendRedis:
		c, err := cache.NewRedis(ctx, cache.RedisOptions{Addr: cfg.RedisAddr, DB: cfg.RedisDB}, cacheConfig)
		if err != nil {
			return nil, nil, err
		}
		return NewPosts(c, nil, cfg.TTL, logger), c.Close, nil

	case config.BackendSQLite, config.BackendPostgres:
		db, err := OpenSQL(ctx, cfg.Backend, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		sqlStore := NewSQLStore(db)
		if err := sqlStore.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		c := cache.NewMemory(cacheConfig)
		closeAll := func() error {
			return errors.Join(c.Close(), db.Close())
		}
		return NewPosts(c, sqlStore, cfg.TTL, logger), closeAll, nil
	}

	return nil, nil, fmt.Errorf("unsupported store backend: %s", cfg.Backend)
}
