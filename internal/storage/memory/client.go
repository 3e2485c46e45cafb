package memory

import (
	"context"
	"errors"
	"sync"
)

var ErrClosed = errors.New("memory store: closed")

// Client: хранилище в памяти процесса (тесты и -dev без внешних сервисов).
// Значения копируются на входе и выходе, чтобы вызывающий не мог изменить документ в обход Set.
type Client struct {
	mu     sync.RWMutex
	docs   map[string][]byte
	closed bool
}

func New() *Client {
	return &Client{docs: make(map[string][]byte)}
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, ErrClosed
	}
	v, ok := c.docs[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (c *Client) Set(ctx context.Context, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.docs[key] = append([]byte(nil), value...)
	return nil
}

func (c *Client) Remove(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	delete(c.docs, key)
	return nil
}

// Keys возвращает все ключи (для тестов и отладки).
func (c *Client) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.docs))
	for k := range c.docs {
		keys = append(keys, k)
	}
	return keys
}
