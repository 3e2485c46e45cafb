package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/lingochat/internal/logger"
	"github.com/lingochat/internal/model"
	"github.com/lingochat/internal/storage"
)

// ReactionRepository хранит в reactions_<chatId> отображение id сообщения -> реакции.
type ReactionRepository struct {
	store storage.DocumentStore
}

func NewReactionRepository(store storage.DocumentStore) *ReactionRepository {
	return &ReactionRepository{store: store}
}

func (r *ReactionRepository) Load(ctx context.Context, chatID string) (map[string][]model.Reaction, error) {
	defer logger.DeferLogDuration("reaction.Load", time.Now())()
	byMessage := make(map[string][]model.Reaction)
	if _, err := loadJSON(ctx, r.store, storage.ReactionsKey(chatID), &byMessage); err != nil {
		return nil, fmt.Errorf("reactionRepo.Load: %w", err)
	}
	if byMessage == nil {
		byMessage = make(map[string][]model.Reaction)
	}
	return byMessage, nil
}

func (r *ReactionRepository) Save(ctx context.Context, chatID string, byMessage map[string][]model.Reaction) error {
	defer logger.DeferLogDuration("reaction.Save", time.Now())()
	if err := saveJSON(ctx, r.store, storage.ReactionsKey(chatID), byMessage); err != nil {
		return fmt.Errorf("reactionRepo.Save: %w", err)
	}
	return nil
}

func (r *ReactionRepository) Clear(ctx context.Context, chatID string) error {
	if err := r.store.Remove(ctx, storage.ReactionsKey(chatID)); err != nil {
		return fmt.Errorf("reactionRepo.Clear: %w", err)
	}
	return nil
}
