package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lingochat/internal/logger"
	"github.com/lingochat/internal/model"
	"github.com/lingochat/internal/translate"
)

// ToggleReaction: у пользователя одна реакция на сообщение. Та же эмодзи снимает её,
// другая: заменяет. Возвращает реакции сообщения после изменения.
func (m *Manager) ToggleReaction(ctx context.Context, chatID, messageID, emoji string) ([]model.Reaction, error) {
	defer logger.DeferLogDuration("chat.ToggleReaction", time.Now())()
	emoji = strings.TrimSpace(emoji)
	if emoji == "" {
		return nil, fmt.Errorf("%w: emoji required", ErrInvalidInput)
	}
	unlock := m.lock()
	defer unlock()

	if _, err := m.messages.GetByID(ctx, chatID, messageID); err != nil {
		return nil, err
	}
	byMessage, err := m.reactions.Load(ctx, chatID)
	if err != nil {
		return nil, err
	}
	list := byMessage[messageID]
	idx := -1
	for i := range list {
		if list[i].UserID == m.ownerID {
			idx = i
			break
		}
	}
	switch {
	case idx >= 0 && list[idx].Emoji == emoji:
		list = append(list[:idx], list[idx+1:]...)
	case idx >= 0:
		list[idx].Emoji = emoji
		list[idx].CreatedAt = m.svc.opts.Clock().UTC()
	default:
		list = append(list, model.Reaction{UserID: m.ownerID, Emoji: emoji, CreatedAt: m.svc.opts.Clock().UTC()})
	}
	if len(list) == 0 {
		delete(byMessage, messageID)
	} else {
		byMessage[messageID] = list
	}
	if err := m.reactions.Save(ctx, chatID, byMessage); err != nil {
		return nil, err
	}
	if list == nil {
		list = []model.Reaction{}
	}
	return list, nil
}

func (m *Manager) Reactions(ctx context.Context, chatID string) (map[string][]model.Reaction, error) {
	return m.reactions.Load(ctx, chatID)
}

func (m *Manager) dropReactions(ctx context.Context, chatID, messageID string) error {
	byMessage, err := m.reactions.Load(ctx, chatID)
	if err != nil {
		return err
	}
	if _, ok := byMessage[messageID]; !ok {
		return nil
	}
	delete(byMessage, messageID)
	return m.reactions.Save(ctx, chatID, byMessage)
}

// ToggleStar добавляет или снимает звезду; возвращает новое состояние.
func (m *Manager) ToggleStar(ctx context.Context, chatID, messageID string) (bool, error) {
	defer logger.DeferLogDuration("chat.ToggleStar", time.Now())()
	unlock := m.lock()
	defer unlock()

	items, err := m.starred.List(ctx, m.ownerID)
	if err != nil {
		return false, err
	}
	for i := range items {
		if items[i].MessageID == messageID {
			items = append(items[:i], items[i+1:]...)
			return false, m.starred.Save(ctx, m.ownerID, items)
		}
	}
	if _, err := m.messages.GetByID(ctx, chatID, messageID); err != nil {
		return false, err
	}
	items = append(items, model.StarredMessage{
		MessageID: messageID,
		UserID:    m.ownerID,
		ChatID:    chatID,
		CreatedAt: m.svc.opts.Clock().UTC(),
	})
	return true, m.starred.Save(ctx, m.ownerID, items)
}

// ListStarred разрешает ссылки при чтении; сообщения, которых больше нет, пропускаются.
func (m *Manager) ListStarred(ctx context.Context) ([]model.StarredView, error) {
	items, err := m.starred.List(ctx, m.ownerID)
	if err != nil {
		return nil, err
	}
	logs := make(map[string][]model.Message)
	out := make([]model.StarredView, 0, len(items))
	for _, s := range items {
		msgs, ok := logs[s.ChatID]
		if !ok {
			if msgs, err = m.messages.Load(ctx, s.ChatID); err != nil {
				return nil, err
			}
			logs[s.ChatID] = msgs
		}
		for i := range msgs {
			if msgs[i].ID == s.MessageID {
				out = append(out, model.StarredView{StarredMessage: s, Message: msgs[i]})
				break
			}
		}
	}
	return out, nil
}

func (m *Manager) dropStar(ctx context.Context, messageID string) error {
	items, err := m.starred.List(ctx, m.ownerID)
	if err != nil {
		return err
	}
	for i := range items {
		if items[i].MessageID == messageID {
			return m.starred.Save(ctx, m.ownerID, append(items[:i], items[i+1:]...))
		}
	}
	return nil
}

// Block добавляет пользователя в blocked_<owner> и в профиль (User.BlockedUsers).
func (m *Manager) Block(ctx context.Context, userID string) error {
	if userID == "" || userID == m.ownerID {
		return ErrInvalidTarget
	}
	return m.setBlocked(ctx, userID, true)
}

func (m *Manager) Unblock(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrInvalidTarget
	}
	return m.setBlocked(ctx, userID, false)
}

func (m *Manager) setBlocked(ctx context.Context, userID string, block bool) error {
	defer logger.DeferLogDuration("chat.setBlocked", time.Now())()
	unlock := m.lock()
	ids, err := m.blocked.List(ctx, m.ownerID)
	if err != nil {
		unlock()
		return err
	}
	next := toggleID(ids, userID, block)
	if len(next) != len(ids) {
		if err := m.blocked.Save(ctx, m.ownerID, next); err != nil {
			unlock()
			return err
		}
	}
	unlock()

	_, err = m.svc.updateUser(ctx, m.ownerID, func(u *model.User) error {
		u.BlockedUsers = toggleID(u.BlockedUsers, userID, block)
		return nil
	})
	if err != nil {
		logger.Warnf("chat: blocked list not mirrored to profile %s", logger.Fields{"owner": m.ownerID, "err": err})
	}
	return nil
}

func toggleID(ids []string, id string, present bool) []string {
	out := make([]string, 0, len(ids)+1)
	found := false
	for _, v := range ids {
		if v == id {
			found = true
			if !present {
				continue
			}
		}
		out = append(out, v)
	}
	if present && !found {
		out = append(out, id)
	}
	return out
}

func (m *Manager) ListBlocked(ctx context.Context) ([]string, error) {
	return m.blocked.List(ctx, m.ownerID)
}

func (m *Manager) IsBlocked(ctx context.Context, userID string) (bool, error) {
	ids, err := m.blocked.List(ctx, m.ownerID)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

// ProfileUpdate: частичное обновление профиля; nil поля не меняются.
type ProfileUpdate struct {
	DisplayName       *string           `json:"displayName,omitempty"`
	Status            *model.UserStatus `json:"status,omitempty"`
	PreferredLanguage *string           `json:"preferredLanguage,omitempty"`
	AvatarURL         *string           `json:"avatarUrl,omitempty"`
}

func (m *Manager) Profile(ctx context.Context) (*model.User, error) {
	return m.svc.users.GetByID(ctx, m.ownerID)
}

// UpdateProfile; язык нормализуется до базового кода ("es-MX" -> "es").
// Язык в уже созданных группах не меняется: он фиксируется при вступлении.
func (m *Manager) UpdateProfile(ctx context.Context, p ProfileUpdate) (*model.User, error) {
	var lang string
	if p.PreferredLanguage != nil {
		var err error
		if lang, err = translate.Normalize(*p.PreferredLanguage); err != nil {
			return nil, err
		}
	}
	if p.Status != nil {
		switch *p.Status {
		case model.UserStatusOnline, model.UserStatusAway, model.UserStatusOffline:
		default:
			return nil, fmt.Errorf("%w: status %q", ErrInvalidInput, *p.Status)
		}
	}
	return m.svc.updateUser(ctx, m.ownerID, func(u *model.User) error {
		if p.DisplayName != nil {
			name := strings.TrimSpace(*p.DisplayName)
			if name == "" {
				return fmt.Errorf("%w: display name required", ErrInvalidInput)
			}
			u.DisplayName = name
		}
		if p.Status != nil {
			u.Status = *p.Status
		}
		if lang != "" {
			u.PreferredLanguage = lang
		}
		if p.AvatarURL != nil {
			u.AvatarURL = strings.TrimSpace(*p.AvatarURL)
		}
		return nil
	})
}
