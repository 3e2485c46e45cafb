package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/lingochat/internal/logger"
	"github.com/lingochat/internal/model"
	"github.com/lingochat/internal/storage"
)

// IntentRepository ведёт журнал intents_<userId>. Запись появляется до изменения лога и
// строки разговора и удаляется после того, как оба документа записаны.
type IntentRepository struct {
	store storage.DocumentStore
}

func NewIntentRepository(store storage.DocumentStore) *IntentRepository {
	return &IntentRepository{store: store}
}

func (r *IntentRepository) List(ctx context.Context, ownerID string) ([]model.Intent, error) {
	defer logger.DeferLogDuration("intent.List", time.Now())()
	items := make([]model.Intent, 0, 1)
	if _, err := loadJSON(ctx, r.store, storage.IntentsKey(ownerID), &items); err != nil {
		return nil, fmt.Errorf("intentRepo.List: %w", err)
	}
	return items, nil
}

func (r *IntentRepository) Add(ctx context.Context, ownerID string, in *model.Intent) error {
	defer logger.DeferLogDuration("intent.Add", time.Now())()
	items, err := r.List(ctx, ownerID)
	if err != nil {
		return err
	}
	items = append(items, *in)
	if err := saveJSON(ctx, r.store, storage.IntentsKey(ownerID), items); err != nil {
		return fmt.Errorf("intentRepo.Add: %w", err)
	}
	return nil
}

// Remove удаляет запись; пустой журнал удаляется целиком.
func (r *IntentRepository) Remove(ctx context.Context, ownerID, intentID string) error {
	defer logger.DeferLogDuration("intent.Remove", time.Now())()
	items, err := r.List(ctx, ownerID)
	if err != nil {
		return err
	}
	kept := items[:0]
	for _, in := range items {
		if in.ID != intentID {
			kept = append(kept, in)
		}
	}
	if len(kept) == 0 {
		if err := r.store.Remove(ctx, storage.IntentsKey(ownerID)); err != nil {
			return fmt.Errorf("intentRepo.Remove: %w", err)
		}
		return nil
	}
	if err := saveJSON(ctx, r.store, storage.IntentsKey(ownerID), kept); err != nil {
		return fmt.Errorf("intentRepo.Remove: %w", err)
	}
	return nil
}
