package chat

import (
	"context"
	"sync"
	"time"

	"github.com/lingochat/internal/model"
)

// TypingEvent описан с точки зрения получателя, ChatID указывает чат в его списке.
type TypingEvent struct {
	ChatID  string `json:"chatId"`
	UserID  string `json:"userId"`
	IsGroup bool   `json:"isGroup"`
	Typing  bool   `json:"typing"`
}

// typingTracker: только память процесса, записи истекают через ttl.
type typingTracker struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]map[string]time.Time
}

func newTypingTracker(ttl time.Duration, now func() time.Time) *typingTracker {
	return &typingTracker{ttl: ttl, now: now, entries: make(map[string]map[string]time.Time)}
}

// typingKey у группы равен id группы, у личного чата упорядоченной паре.
func typingKey(ownerID string, target model.ChatTarget) string {
	if target.IsGroup() {
		return "g:" + target.GroupID
	}
	a, b := ownerID, target.UserID
	if a > b {
		a, b = b, a
	}
	return "d:" + a + ":" + b
}

func (t *typingTracker) set(key, userID string, typing bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !typing {
		delete(t.entries[key], userID)
		if len(t.entries[key]) == 0 {
			delete(t.entries, key)
		}
		return
	}
	if t.entries[key] == nil {
		t.entries[key] = make(map[string]time.Time)
	}
	t.entries[key][userID] = t.now().Add(t.ttl)
}

// snapshot: кто печатает в чате, кроме viewer. Истёкшие записи удаляются.
func (t *typingTracker) snapshot(key, viewer string) map[string]bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	out := make(map[string]bool)
	for uid, exp := range t.entries[key] {
		if !now.Before(exp) {
			delete(t.entries[key], uid)
			continue
		}
		if uid != viewer {
			out[uid] = true
		}
	}
	if len(t.entries[key]) == 0 {
		delete(t.entries, key)
	}
	return out
}

// SetTyping отмечает, что владелец печатает в чат target, и уведомляет собеседников.
func (m *Manager) SetTyping(ctx context.Context, target model.ChatTarget, typing bool) error {
	if !target.Valid() || target.UserID == m.ownerID {
		return ErrInvalidTarget
	}
	recips, err := m.svc.recipients(ctx, m.ownerID, target)
	if err != nil {
		return err
	}
	m.svc.typing.set(typingKey(m.ownerID, target), m.ownerID, typing)
	for _, r := range recips {
		ev := TypingEvent{ChatID: m.ownerID, UserID: m.ownerID, Typing: typing}
		if target.IsGroup() {
			ev.ChatID = target.GroupID
			ev.IsGroup = true
		}
		viewer := r.UserID
		m.svc.notify(func(n Notifier) { n.TypingChanged(ctx, viewer, ev) })
	}
	return nil
}

// Typing: карта userID -> true для тех, кто сейчас печатает в чат target владельцу.
func (m *Manager) Typing(ctx context.Context, target model.ChatTarget) (map[string]bool, error) {
	if !target.Valid() {
		return nil, ErrInvalidTarget
	}
	if target.IsGroup() {
		// Только участники видят, кто печатает в группе.
		if _, err := m.svc.recipients(ctx, m.ownerID, target); err != nil {
			return nil, err
		}
	}
	return m.svc.typing.snapshot(typingKey(m.ownerID, target), m.ownerID), nil
}
