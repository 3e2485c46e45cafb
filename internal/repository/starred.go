package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/lingochat/internal/logger"
	"github.com/lingochat/internal/model"
	"github.com/lingochat/internal/storage"
)

type StarredRepository struct {
	store storage.DocumentStore
}

func NewStarredRepository(store storage.DocumentStore) *StarredRepository {
	return &StarredRepository{store: store}
}

func (r *StarredRepository) List(ctx context.Context, userID string) ([]model.StarredMessage, error) {
	defer logger.DeferLogDuration("starred.List", time.Now())()
	items := make([]model.StarredMessage, 0, 8)
	if _, err := loadJSON(ctx, r.store, storage.StarredKey(userID), &items); err != nil {
		return nil, fmt.Errorf("starredRepo.List: %w", err)
	}
	return items, nil
}

func (r *StarredRepository) Save(ctx context.Context, userID string, items []model.StarredMessage) error {
	defer logger.DeferLogDuration("starred.Save", time.Now())()
	if err := saveJSON(ctx, r.store, storage.StarredKey(userID), items); err != nil {
		return fmt.Errorf("starredRepo.Save: %w", err)
	}
	return nil
}
