package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/lingochat/internal/logger"
	"github.com/lingochat/internal/model"
	"github.com/lingochat/internal/storage"
)

// ConversationRepository: строки списка чатов conversations_<userId>.
type ConversationRepository struct {
	store storage.DocumentStore
}

func NewConversationRepository(store storage.DocumentStore) *ConversationRepository {
	return &ConversationRepository{store: store}
}

func (r *ConversationRepository) List(ctx context.Context, ownerID string) ([]model.Conversation, error) {
	defer logger.DeferLogDuration("conv.List", time.Now())()
	rows := make([]model.Conversation, 0, 16)
	if _, err := loadJSON(ctx, r.store, storage.ConversationsKey(ownerID), &rows); err != nil {
		return nil, fmt.Errorf("convRepo.List: %w", err)
	}
	return rows, nil
}

// Save перезаписывает все строки владельца одним документом.
func (r *ConversationRepository) Save(ctx context.Context, ownerID string, rows []model.Conversation) error {
	defer logger.DeferLogDuration("conv.Save", time.Now())()
	if err := saveJSON(ctx, r.store, storage.ConversationsKey(ownerID), rows); err != nil {
		return fmt.Errorf("convRepo.Save: %w", err)
	}
	return nil
}

// FindByChat возвращает индекс строки чата chatID или -1.
func FindByChat(rows []model.Conversation, chatID string) int {
	for i := range rows {
		if rows[i].ChatID() == chatID {
			return i
		}
	}
	return -1
}
