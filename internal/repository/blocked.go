package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/lingochat/internal/logger"
	"github.com/lingochat/internal/storage"
)

// BlockedRepository хранит в blocked_<userId> id заблокированных пользователей.
type BlockedRepository struct {
	store storage.DocumentStore
}

func NewBlockedRepository(store storage.DocumentStore) *BlockedRepository {
	return &BlockedRepository{store: store}
}

func (r *BlockedRepository) List(ctx context.Context, userID string) ([]string, error) {
	defer logger.DeferLogDuration("blocked.List", time.Now())()
	ids := make([]string, 0, 4)
	if _, err := loadJSON(ctx, r.store, storage.BlockedKey(userID), &ids); err != nil {
		return nil, fmt.Errorf("blockedRepo.List: %w", err)
	}
	return ids, nil
}

func (r *BlockedRepository) Save(ctx context.Context, userID string, ids []string) error {
	defer logger.DeferLogDuration("blocked.Save", time.Now())()
	if err := saveJSON(ctx, r.store, storage.BlockedKey(userID), ids); err != nil {
		return fmt.Errorf("blockedRepo.Save: %w", err)
	}
	return nil
}
