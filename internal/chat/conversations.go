package chat

import (
	"context"
	"sort"
	"time"

	"github.com/lingochat/internal/logger"
	"github.com/lingochat/internal/model"
	"github.com/lingochat/internal/repository"
)

// ConversationFilter: по умолчанию архивные строки скрыты.
type ConversationFilter struct {
	Archived bool
	Category model.Category
}

// ListConversations возвращает строки владельца в порядке показа (см. SortConversations).
// Archived=true возвращает только архив.
func (m *Manager) ListConversations(ctx context.Context, f ConversationFilter) ([]model.Conversation, error) {
	rows, err := m.convs.List(ctx, m.ownerID)
	if err != nil {
		return nil, err
	}
	out := rows[:0]
	for _, c := range rows {
		if c.IsArchived != f.Archived {
			continue
		}
		if f.Category != model.CategoryNone && c.Category != f.Category {
			continue
		}
		out = append(out, c)
	}
	SortConversations(out)
	return out, nil
}

// SortConversations ставит закреплённые раньше незакреплённых, внутри сортирует по времени последнего
// сообщения по убыванию (нет сообщения = 0), при равенстве по id.
func SortConversations(rows []model.Conversation) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := &rows[i], &rows[j]
		if a.IsPinned != b.IsPinned {
			return a.IsPinned
		}
		if ta, tb := a.LastTimestamp(), b.LastTimestamp(); ta != tb {
			return ta > tb
		}
		return a.ID < b.ID
	})
}

// updateRow применяет fn к строке чата chatID и сохраняет все строки.
// Если строки нет, это тихий no-op (nil, nil). При ошибке fn строки не меняются.
func (m *Manager) updateRow(ctx context.Context, op, chatID string, fn func(rows []model.Conversation, i int) error) (*model.Conversation, error) {
	defer logger.DeferLogDuration("chat."+op, time.Now())()
	unlock := m.lock()
	defer unlock()

	rows, err := m.convs.List(ctx, m.ownerID)
	if err != nil {
		return nil, err
	}
	i := repository.FindByChat(rows, chatID)
	if i < 0 {
		return nil, nil
	}
	before := rows[i]
	if err := fn(rows, i); err != nil {
		return nil, err
	}
	row := rows[i]
	if sameRow(&before, &row) {
		return &row, nil
	}
	if err := m.convs.Save(ctx, m.ownerID, rows); err != nil {
		return nil, err
	}
	m.svc.notify(func(n Notifier) { n.ConversationUpdated(ctx, m.ownerID, &row) })
	return &row, nil
}

func sameRow(a, b *model.Conversation) bool {
	return a.UnreadCount == b.UnreadCount &&
		a.IsPinned == b.IsPinned &&
		a.IsArchived == b.IsArchived &&
		a.Category == b.Category
}

// MarkAsRead обнуляет счётчик непрочитанных. Повторный вызов ничего не меняет.
func (m *Manager) MarkAsRead(ctx context.Context, chatID string) (*model.Conversation, error) {
	return m.updateRow(ctx, "MarkAsRead", chatID, func(rows []model.Conversation, i int) error {
		rows[i].UnreadCount = 0
		return nil
	})
}

// Pin закрепляет чат. Не больше MaxPinned закреплённых неархивных чатов: сверх лимита
// ErrPinLimitReached, старые закрепления не вытесняются. Архивный чат не закрепляется.
func (m *Manager) Pin(ctx context.Context, chatID string) (*model.Conversation, error) {
	return m.updateRow(ctx, "Pin", chatID, func(rows []model.Conversation, i int) error {
		if rows[i].IsPinned {
			return nil
		}
		if rows[i].IsArchived {
			return ErrConversationArchived
		}
		pinned := 0
		for _, c := range rows {
			if c.IsPinned && !c.IsArchived {
				pinned++
			}
		}
		if pinned >= m.svc.opts.MaxPinned {
			return ErrPinLimitReached
		}
		rows[i].IsPinned = true
		return nil
	})
}

func (m *Manager) Unpin(ctx context.Context, chatID string) (*model.Conversation, error) {
	return m.updateRow(ctx, "Unpin", chatID, func(rows []model.Conversation, i int) error {
		rows[i].IsPinned = false
		return nil
	})
}

// Archive также снимает закрепление.
func (m *Manager) Archive(ctx context.Context, chatID string) (*model.Conversation, error) {
	return m.updateRow(ctx, "Archive", chatID, func(rows []model.Conversation, i int) error {
		rows[i].IsArchived = true
		rows[i].IsPinned = false
		return nil
	})
}

func (m *Manager) Unarchive(ctx context.Context, chatID string) (*model.Conversation, error) {
	return m.updateRow(ctx, "Unarchive", chatID, func(rows []model.Conversation, i int) error {
		rows[i].IsArchived = false
		return nil
	})
}

// SetCategory; пустая категория снимает её.
func (m *Manager) SetCategory(ctx context.Context, chatID string, category model.Category) (*model.Conversation, error) {
	if !category.Valid() {
		return nil, ErrInvalidCategory
	}
	return m.updateRow(ctx, "SetCategory", chatID, func(rows []model.Conversation, i int) error {
		rows[i].Category = category
		return nil
	})
}

// DeleteConversation удаляет строку владельца вместе с историей и реакциями чата.
// Нет строки: no-op.
func (m *Manager) DeleteConversation(ctx context.Context, chatID string) error {
	defer logger.DeferLogDuration("chat.DeleteConversation", time.Now())()
	unlock := m.lock()
	defer unlock()

	rows, err := m.convs.List(ctx, m.ownerID)
	if err != nil {
		return err
	}
	i := repository.FindByChat(rows, chatID)
	if i < 0 {
		return nil
	}
	rows = append(rows[:i], rows[i+1:]...)
	if err := m.convs.Save(ctx, m.ownerID, rows); err != nil {
		return err
	}
	if err := m.messages.Clear(ctx, chatID); err != nil {
		logger.Errorf("chat: clear history %s", logger.Fields{"owner": m.ownerID, "chat": chatID, "err": err})
	}
	if err := m.reactions.Clear(ctx, chatID); err != nil {
		logger.Errorf("chat: clear reactions %s", logger.Fields{"owner": m.ownerID, "chat": chatID, "err": err})
	}
	return nil
}
