package startup

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lingochat/internal/config"
	"github.com/lingochat/internal/logger"
	"github.com/lingochat/internal/storage"
	"github.com/lingochat/internal/storage/memory"
	mongostorage "github.com/lingochat/internal/storage/mongo"
	pgstorage "github.com/lingochat/internal/storage/postgres"
	redisstorage "github.com/lingochat/internal/storage/redis"
)

const connectWait = 60 * time.Second

// OpenStore открывает хранилище документов выбранного бэкенда.
// closeFn освобождает всё, что открыто (для postgres: ещё и пул).
func OpenStore(ctx context.Context, cfg config.StoreConfig) (store storage.DocumentStore, closeFn func(), err error) {
	switch cfg.Backend {
	case config.BackendMemory:
		logger.Warnf("store: memory backend, data is lost on restart")
		c := memory.New()
		return c, func() { c.Close() }, nil

	case config.BackendRedis:
		var c *redisstorage.Client
		err = Retry(ctx, "redis connect", connectWait, func(ctx context.Context) error {
			cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			var err error
			c, err = redisstorage.New(cctx, cfg.RedisURL)
			return err
		})
		if err != nil {
			return nil, nil, err
		}
		return c, func() { closeLogged("redis", c.Close) }, nil

	case config.BackendMongo:
		var c *mongostorage.Client
		err = Retry(ctx, "mongo connect", connectWait, func(ctx context.Context) error {
			cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			var err error
			c, err = mongostorage.New(cctx, cfg.MongoURI, cfg.MongoDatabase)
			return err
		})
		if err != nil {
			return nil, nil, err
		}
		return c, func() { closeLogged("mongo", c.Close) }, nil

	case config.BackendPostgres:
		poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("parse db config: %w", err)
		}
		poolCfg.MaxConns = int32(cfg.DBMaxConnections)
		poolCfg.MinConns = 2
		pool, err := ConnectDBWithRetry(ctx, poolCfg, connectWait)
		if err != nil {
			return nil, nil, err
		}
		if err := RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return pgstorage.New(pool), pool.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
}

func closeLogged(what string, fn func() error) {
	if err := fn(); err != nil {
		logger.Errorf("%s close: %v", what, err)
	}
}
