package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/lingochat/internal/logger"
	"github.com/lingochat/internal/model"
	"github.com/lingochat/internal/storage"
)

// MessageRepository: лог сообщений чата messages_<chatId>. Только добавление и удаление.
type MessageRepository struct {
	store storage.DocumentStore
}

func NewMessageRepository(store storage.DocumentStore) *MessageRepository {
	return &MessageRepository{store: store}
}

// Load возвращает лог в хронологическом порядке; нет лога: пустой срез.
func (r *MessageRepository) Load(ctx context.Context, chatID string) ([]model.Message, error) {
	defer logger.DeferLogDuration("msg.Load", time.Now())()
	msgs := make([]model.Message, 0, 32)
	if _, err := loadJSON(ctx, r.store, storage.MessagesKey(chatID), &msgs); err != nil {
		return nil, fmt.Errorf("msgRepo.Load: %w", err)
	}
	return msgs, nil
}

func (r *MessageRepository) GetByID(ctx context.Context, chatID, messageID string) (*model.Message, error) {
	msgs, err := r.Load(ctx, chatID)
	if err != nil {
		return nil, err
	}
	for i := range msgs {
		if msgs[i].ID == messageID {
			return &msgs[i], nil
		}
	}
	return nil, ErrNotFound
}

// Append добавляет сообщение в конец лога. Повтор с тем же id ничего не меняет (appended=false).
func (r *MessageRepository) Append(ctx context.Context, chatID string, m *model.Message) (appended bool, err error) {
	defer logger.DeferLogDuration("msg.Append", time.Now())()
	msgs, err := r.Load(ctx, chatID)
	if err != nil {
		return false, err
	}
	for i := range msgs {
		if msgs[i].ID == m.ID {
			return false, nil
		}
	}
	msgs = append(msgs, *m)
	if err := saveJSON(ctx, r.store, storage.MessagesKey(chatID), msgs); err != nil {
		return false, fmt.Errorf("msgRepo.Append: %w", err)
	}
	return true, nil
}

// Remove удаляет сообщение из лога; возвращает оставшийся лог.
func (r *MessageRepository) Remove(ctx context.Context, chatID, messageID string) (removed bool, rest []model.Message, err error) {
	defer logger.DeferLogDuration("msg.Remove", time.Now())()
	msgs, err := r.Load(ctx, chatID)
	if err != nil {
		return false, nil, err
	}
	kept := msgs[:0]
	for _, m := range msgs {
		if m.ID == messageID {
			removed = true
			continue
		}
		kept = append(kept, m)
	}
	if !removed {
		return false, kept, nil
	}
	if err := saveJSON(ctx, r.store, storage.MessagesKey(chatID), kept); err != nil {
		return false, nil, fmt.Errorf("msgRepo.Remove: %w", err)
	}
	return true, kept, nil
}

// Clear удаляет лог чата целиком.
func (r *MessageRepository) Clear(ctx context.Context, chatID string) error {
	defer logger.DeferLogDuration("msg.Clear", time.Now())()
	if err := r.store.Remove(ctx, storage.MessagesKey(chatID)); err != nil {
		return fmt.Errorf("msgRepo.Clear: %w", err)
	}
	return nil
}
