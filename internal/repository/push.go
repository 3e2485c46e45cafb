package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lingochat/internal/logger"
	"github.com/lingochat/internal/model"
	"github.com/lingochat/internal/storage"
)

// PushRepository: Web Push подписки push_<userId>, уникальны по endpoint.
// Add и Remove переписывают документ целиком, поэтому идут под mu.
type PushRepository struct {
	store storage.DocumentStore
	mu    sync.Mutex
}

func NewPushRepository(store storage.DocumentStore) *PushRepository {
	return &PushRepository{store: store}
}

func (r *PushRepository) List(ctx context.Context, userID string) ([]model.PushSubscription, error) {
	defer logger.DeferLogDuration("push.List", time.Now())()
	subs := make([]model.PushSubscription, 0, 2)
	if _, err := loadJSON(ctx, r.store, storage.PushKey(userID), &subs); err != nil {
		return nil, fmt.Errorf("pushRepo.List: %w", err)
	}
	return subs, nil
}

func (r *PushRepository) Add(ctx context.Context, userID string, sub model.PushSubscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	subs, err := r.List(ctx, userID)
	if err != nil {
		return err
	}
	for i := range subs {
		if subs[i].Endpoint == sub.Endpoint {
			subs[i] = sub
			return r.save(ctx, userID, subs)
		}
	}
	return r.save(ctx, userID, append(subs, sub))
}

func (r *PushRepository) Remove(ctx context.Context, userID, endpoint string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	subs, err := r.List(ctx, userID)
	if err != nil {
		return err
	}
	kept := subs[:0]
	for _, s := range subs {
		if s.Endpoint != endpoint {
			kept = append(kept, s)
		}
	}
	return r.save(ctx, userID, kept)
}

func (r *PushRepository) save(ctx context.Context, userID string, subs []model.PushSubscription) error {
	defer logger.DeferLogDuration("push.save", time.Now())()
	if err := saveJSON(ctx, r.store, storage.PushKey(userID), subs); err != nil {
		return fmt.Errorf("pushRepo.save: %w", err)
	}
	return nil
}
