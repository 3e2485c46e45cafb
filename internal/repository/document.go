package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lingochat/internal/storage"
)

var ErrNotFound = errors.New("not found")

// loadJSON читает документ в dst. Промах: (false, nil), dst не трогается.
func loadJSON(ctx context.Context, store storage.DocumentStore, key string, dst any) (bool, error) {
	raw, err := store.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if raw == nil {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func saveJSON(ctx context.Context, store storage.DocumentStore, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return store.Set(ctx, key, raw)
}
