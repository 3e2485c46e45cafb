package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lingochat/internal/logger"
	"github.com/lingochat/internal/model"
	"github.com/lingochat/internal/repository"
	"github.com/lingochat/internal/storage"
)

// Manager: операции одного пользователя над его хранилищем устройства.
// Создание дешёвое, состояние между вызовами хранится только в DocumentStore.
type Manager struct {
	svc     *Service
	ownerID string

	messages  *repository.MessageRepository
	convs     *repository.ConversationRepository
	reactions *repository.ReactionRepository
	starred   *repository.StarredRepository
	blocked   *repository.BlockedRepository
	intents   *repository.IntentRepository
}

func (s *Service) Manager(ownerID string) *Manager {
	device := storage.Namespace(s.root, ownerID)
	return &Manager{
		svc:       s,
		ownerID:   ownerID,
		messages:  repository.NewMessageRepository(device),
		convs:     repository.NewConversationRepository(device),
		reactions: repository.NewReactionRepository(device),
		starred:   repository.NewStarredRepository(device),
		blocked:   repository.NewBlockedRepository(device),
		intents:   repository.NewIntentRepository(device),
	}
}

func (m *Manager) OwnerID() string { return m.ownerID }

func (m *Manager) lock() func() {
	mu := m.svc.ownerLock(m.ownerID)
	mu.Lock()
	return mu.Unlock
}

type sendOptions struct {
	mediaType     model.MediaType
	mediaURL      string
	forwardedFrom string
}

type SendOption func(*sendOptions)

func WithMedia(t model.MediaType, url string) SendOption {
	return func(o *sendOptions) {
		o.mediaType = t
		o.mediaURL = strings.TrimSpace(url)
	}
}

func WithForwardedFrom(userID string) SendOption {
	return func(o *sendOptions) { o.forwardedFrom = userID }
}

// Send создаёт сообщение, переводит его на языки получателей, атомарно (через журнал)
// пишет лог и строку разговора отправителя и доставляет копии получателям.
func (m *Manager) Send(ctx context.Context, target model.ChatTarget, text string, opts ...SendOption) (*model.Message, error) {
	defer logger.DeferLogDuration("chat.Send", time.Now())()
	var o sendOptions
	for _, opt := range opts {
		opt(&o)
	}
	if !target.Valid() || target.UserID == m.ownerID {
		return nil, ErrInvalidTarget
	}
	text = strings.TrimSpace(text)
	if text == "" && o.mediaURL == "" {
		return nil, ErrEmptyMessage
	}
	if !target.IsGroup() {
		blocked, err := m.IsBlocked(ctx, target.UserID)
		if err != nil {
			return nil, err
		}
		if blocked {
			return nil, ErrBlocked
		}
	}
	recips, err := m.svc.recipients(ctx, m.ownerID, target)
	if err != nil {
		return nil, err
	}

	src := m.svc.tr.DetectLanguage(text)
	msg := &model.Message{
		ID:               m.svc.opts.NewID(),
		SenderID:         m.ownerID,
		ReceiverID:       target.UserID,
		GroupID:          target.GroupID,
		OriginalText:     text,
		OriginalLanguage: src,
		Timestamp:        m.svc.opts.Clock().UnixMilli(),
		Status:           model.MessageStatusSent,
		MediaType:        o.mediaType,
		MediaURL:         o.mediaURL,
		ForwardedFrom:    o.forwardedFrom,
	}
	if err := m.fanOut(ctx, msg, recips); err != nil {
		return nil, err
	}

	unlock := m.lock()
	row, err := m.commit(ctx, model.IntentSend, target, msg, 0)
	unlock()
	if err != nil {
		logger.Errorf("chat: send failed %s", logger.Fields{"owner": m.ownerID, "chat": target.ChatID(), "err": err})
		return nil, err
	}
	logger.Debugf("chat: sent %s", logger.Fields{"owner": m.ownerID, "chat": target.ChatID(), "msg": msg.ID, "lang": src})

	m.svc.notify(func(n Notifier) {
		n.MessageDelivered(ctx, m.ownerID, msg)
		if row != nil {
			n.ConversationUpdated(ctx, m.ownerID, row)
		}
	})
	for _, r := range recips {
		if err := m.svc.Manager(r.UserID).Receive(ctx, *msg); err != nil {
			logger.Errorf("chat: delivery failed %s", logger.Fields{"from": m.ownerID, "to": r.UserID, "msg": msg.ID, "err": err})
		}
	}
	return msg, nil
}

// fanOut заполняет Translations для каждого языка получателей, отличного от исходного,
// и TranslatedText (у личного чата это язык собеседника, у группы первого участника
// с другим языком, иначе оригинал).
func (m *Manager) fanOut(ctx context.Context, msg *model.Message, recips []recipient) error {
	msg.TranslatedText = msg.OriginalText
	msg.TranslatedLanguage = msg.OriginalLanguage
	if msg.OriginalText == "" {
		return nil
	}
	picked := false
	for _, r := range recips {
		lang := r.Language
		if lang == "" || lang == msg.OriginalLanguage {
			continue
		}
		tr, ok := msg.Translations[lang]
		if !ok {
			var err error
			tr, err = m.svc.tr.Translate(ctx, msg.OriginalText, msg.OriginalLanguage, lang)
			if err != nil {
				return err
			}
			if msg.Translations == nil {
				msg.Translations = make(map[string]string, len(recips))
			}
			msg.Translations[lang] = tr
		}
		if !picked {
			msg.TranslatedText = tr
			msg.TranslatedLanguage = lang
			picked = true
		}
	}
	return nil
}

// Receive: доставка сообщения на устройство владельца. Сообщения от заблокированных
// отбрасываются; повторная доставка того же id ничего не меняет.
func (m *Manager) Receive(ctx context.Context, msg model.Message) error {
	defer logger.DeferLogDuration("chat.Receive", time.Now())()
	if msg.SenderID == m.ownerID {
		return nil
	}
	blocked, err := m.IsBlocked(ctx, msg.SenderID)
	if err != nil {
		return err
	}
	if blocked {
		logger.Debugf("chat: dropped message from blocked sender %s", logger.Fields{"owner": m.ownerID, "sender": msg.SenderID})
		return nil
	}
	if err := m.render(ctx, &msg); err != nil {
		return err
	}
	msg.Status = model.MessageStatusDelivered

	peer := model.ChatTarget{UserID: msg.SenderID}
	if msg.GroupID != "" {
		peer = model.ChatTarget{GroupID: msg.GroupID}
	}
	unlock := m.lock()
	row, err := m.commit(ctx, model.IntentReceive, peer, &msg, 1)
	unlock()
	if err != nil {
		return err
	}
	if row == nil {
		return nil
	}
	m.svc.notify(func(n Notifier) {
		n.MessageDelivered(ctx, m.ownerID, &msg)
		n.ConversationUpdated(ctx, m.ownerID, row)
	})
	return nil
}

// render выставляет TranslatedText на языке владельца.
func (m *Manager) render(ctx context.Context, msg *model.Message) error {
	if len(msg.Translations) > 0 {
		cp := make(map[string]string, len(msg.Translations))
		for k, v := range msg.Translations {
			cp[k] = v
		}
		msg.Translations = cp
	}
	owner, err := m.svc.users.GetByID(ctx, m.ownerID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	lang := owner.PreferredLanguage
	switch {
	case lang == "" || lang == msg.OriginalLanguage || msg.OriginalText == "":
		msg.TranslatedText = msg.OriginalText
		msg.TranslatedLanguage = msg.OriginalLanguage
	case msg.Translations[lang] != "":
		msg.TranslatedText = msg.Translations[lang]
		msg.TranslatedLanguage = lang
	default:
		tr, err := m.svc.tr.Translate(ctx, msg.OriginalText, msg.OriginalLanguage, lang)
		if err != nil {
			return err
		}
		msg.TranslatedText = tr
		msg.TranslatedLanguage = lang
	}
	return nil
}

// LoadMessages возвращает лог чата в хронологическом порядке, без истории пустой срез.
func (m *Manager) LoadMessages(ctx context.Context, chatID string) ([]model.Message, error) {
	return m.messages.Load(ctx, chatID)
}

// DeleteMessage удаляет сообщение из лога владельца вместе с его реакциями и звездой.
// Если строка разговора показывала это сообщение, lastMessage берётся из оставшегося лога.
func (m *Manager) DeleteMessage(ctx context.Context, chatID, messageID string) error {
	defer logger.DeferLogDuration("chat.DeleteMessage", time.Now())()
	unlock := m.lock()
	defer unlock()

	removed, rest, err := m.messages.Remove(ctx, chatID, messageID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFound
	}
	if err := m.dropReactions(ctx, chatID, messageID); err != nil {
		logger.Errorf("chat: drop reactions %s", logger.Fields{"owner": m.ownerID, "msg": messageID, "err": err})
	}
	if err := m.dropStar(ctx, messageID); err != nil {
		logger.Errorf("chat: drop star %s", logger.Fields{"owner": m.ownerID, "msg": messageID, "err": err})
	}

	rows, err := m.convs.List(ctx, m.ownerID)
	if err != nil {
		return err
	}
	i := repository.FindByChat(rows, chatID)
	if i < 0 || rows[i].LastMessage == nil || rows[i].LastMessage.ID != messageID {
		return nil
	}
	rows[i].LastMessage = latest(rest)
	if err := m.convs.Save(ctx, m.ownerID, rows); err != nil {
		return err
	}
	row := rows[i]
	m.svc.notify(func(n Notifier) { n.ConversationUpdated(ctx, m.ownerID, &row) })
	return nil
}

func latest(msgs []model.Message) *model.Message {
	var last *model.Message
	for i := range msgs {
		if last == nil || msgs[i].Timestamp >= last.Timestamp {
			last = &msgs[i]
		}
	}
	if last == nil {
		return nil
	}
	cp := *last
	return &cp
}

// ForwardMessage отправляет текст и вложение сообщения из fromChatID новому адресату.
// forwardedFrom указывает на автора исходного сообщения, в том числе через цепочку пересылок.
func (m *Manager) ForwardMessage(ctx context.Context, fromChatID, messageID string, target model.ChatTarget) (*model.Message, error) {
	orig, err := m.messages.GetByID(ctx, fromChatID, messageID)
	if err != nil {
		return nil, err
	}
	author := orig.SenderID
	if orig.ForwardedFrom != "" {
		author = orig.ForwardedFrom
	}
	opts := []SendOption{WithForwardedFrom(author)}
	if orig.MediaURL != "" {
		opts = append(opts, WithMedia(orig.MediaType, orig.MediaURL))
	}
	return m.Send(ctx, target, orig.OriginalText, opts...)
}
