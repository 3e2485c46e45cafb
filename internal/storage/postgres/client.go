package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lingochat/internal/logger"
)

// Client хранит документы в таблице documents (миграция 001_documents.sql).
type Client struct {
	pool *pgxpool.Pool
}

// New оборачивает уже подключённый пул; закрытие пула остаётся за вызывающим.
func New(pool *pgxpool.Pool) *Client {
	return &Client{pool: pool}
}

func (c *Client) Close() error { return nil }

func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	defer logger.DeferLogDuration("pg.Get", time.Now())()
	var raw string
	err := c.pool.QueryRow(ctx, `SELECT value::text FROM documents WHERE key = $1`, key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pgStore.Get %s: %w", key, err)
	}
	return []byte(raw), nil
}

func (c *Client) Set(ctx context.Context, key string, value []byte) error {
	defer logger.DeferLogDuration("pg.Set", time.Now())()
	_, err := c.pool.Exec(ctx,
		`INSERT INTO documents (key, value, updated_at)
		 VALUES ($1, $2::jsonb, $3)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		key, string(value), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("pgStore.Set %s: %w", key, err)
	}
	return nil
}

func (c *Client) Remove(ctx context.Context, key string) error {
	defer logger.DeferLogDuration("pg.Remove", time.Now())()
	if _, err := c.pool.Exec(ctx, `DELETE FROM documents WHERE key = $1`, key); err != nil {
		return fmt.Errorf("pgStore.Remove %s: %w", key, err)
	}
	return nil
}
