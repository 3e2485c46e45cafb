// Package startup: подключение к хранилищам с повторами и выбор бэкенда по конфигу.
package startup

import (
	"context"
	"fmt"
	"time"

	"github.com/lingochat/internal/logger"
)

var (
	initialBackoff = 2 * time.Second
	maxBackoff     = 30 * time.Second
)

// Retry вызывает fn, пока она не вернёт nil или не истечёт maxWait.
// Пауза между попытками растёт вдвое (2s, 4s ... 30s).
func Retry(ctx context.Context, what string, maxWait time.Duration, fn func(ctx context.Context) error) error {
	deadline := time.Now().Add(maxWait)
	backoff := initialBackoff
	for attempt := 1; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if time.Now().Add(backoff).After(deadline) {
			return fmt.Errorf("%s: gave up after %d attempts: %w", what, attempt, err)
		}
		logger.Errorf("%s failed, retry in %v: %v", what, backoff, err)
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: %w", what, ctx.Err())
		case <-time.After(backoff):
		}
		if backoff < maxBackoff {
			backoff *= 2
		}
	}
}
