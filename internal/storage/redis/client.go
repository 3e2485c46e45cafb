package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lingochat/internal/logger"
	"github.com/redis/go-redis/v9"
)

// keyPrefix отделяет документы от прочих ключей в той же БД Redis.
const keyPrefix = "doc:"

type Client struct {
	cli *redis.Client
}

func New(ctx context.Context, url string) (*Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis parse url: %w", err)
	}
	cli := redis.NewClient(opts)
	if err := cli.Ping(ctx).Err(); err != nil {
		if closeErr := cli.Close(); closeErr != nil {
			return nil, fmt.Errorf("redis ping: %w (close: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Client{cli: cli}, nil
}

func (c *Client) Close() error {
	return c.cli.Close()
}

// Get возвращает документ по ключу doc:{key}; промах: nil, nil.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	defer logger.DeferLogDuration("redis.Get", time.Now())()
	val, err := c.cli.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, nil
}

// Set сохраняет документ без TTL: данные устройства не истекают.
func (c *Client) Set(ctx context.Context, key string, value []byte) error {
	defer logger.DeferLogDuration("redis.Set", time.Now())()
	if err := c.cli.Set(ctx, keyPrefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (c *Client) Remove(ctx context.Context, key string) error {
	defer logger.DeferLogDuration("redis.Remove", time.Now())()
	if err := c.cli.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// FlushDB очищает текущую БД Redis (сброс данных при тестах).
func (c *Client) FlushDB(ctx context.Context) error {
	return c.cli.FlushDB(ctx).Err()
}
