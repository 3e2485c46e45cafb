package storage

import "context"

// DocumentStore: key-value хранилище JSON-документов устройства.
// Реализации: memory.Client, redis.Client, postgres.Client, mongo.Client.
// Транзакций нет: согласованность нескольких ключей обеспечивает вызывающий код.
type DocumentStore interface {
	// Get возвращает nil, nil если ключа нет: промах не ошибка.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Remove отсутствующего ключа не ошибка.
	Remove(ctx context.Context, key string) error
	Close() error
}
