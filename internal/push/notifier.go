// Package push: Web Push уведомления о новых сообщениях. Подписки хранятся в push_<userId>.
package push

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
	"golang.org/x/sync/errgroup"

	"github.com/lingochat/internal/chat"
	"github.com/lingochat/internal/logger"
	"github.com/lingochat/internal/model"
	"github.com/lingochat/internal/repository"
)

const (
	sendTimeout  = 10 * time.Second
	maxParallel  = 4
	maxBodyRunes = 120
)

// SendFunc: webpush.SendNotificationWithContext; подменяется в тестах.
type SendFunc func(ctx context.Context, payload []byte, sub *webpush.Subscription, opts *webpush.Options) (*http.Response, error)

type UserLookup interface {
	User(ctx context.Context, id string) (*model.User, error)
}

// Payload: то, что получает service worker.
type Payload struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// Notifier реализует chat.Notifier: получателю нового сообщения уходит пуш на все его подписки.
type Notifier struct {
	subs  *repository.PushRepository
	users UserLookup
	vapid *webpush.Options
	send  SendFunc
	wg    sync.WaitGroup
}

var _ chat.Notifier = (*Notifier)(nil)

func NewNotifier(subs *repository.PushRepository, users UserLookup, keys *VAPIDKeys, subject string) *Notifier {
	n := &Notifier{subs: subs, users: users, send: webpush.SendNotificationWithContext}
	if keys != nil && keys.PublicKey != "" && keys.PrivateKey != "" {
		if subject == "" {
			subject = "lingochat"
		}
		n.vapid = &webpush.Options{
			Subscriber:      subject,
			VAPIDPublicKey:  keys.PublicKey,
			VAPIDPrivateKey: keys.PrivateKey,
			TTL:             30,
		}
	}
	return n
}

func (n *Notifier) Enabled() bool { return n.vapid != nil }

func (n *Notifier) Subscribe(ctx context.Context, userID string, sub model.PushSubscription) error {
	return n.subs.Add(ctx, userID, sub)
}

func (n *Notifier) Unsubscribe(ctx context.Context, userID, endpoint string) error {
	return n.subs.Remove(ctx, userID, endpoint)
}

// MessageDelivered отправляет пуш в фоне: доставка сообщения не ждёт push-сервисов.
func (n *Notifier) MessageDelivered(_ context.Context, ownerID string, msg *model.Message) {
	if n.vapid == nil || msg.SenderID == ownerID {
		return
	}
	m := *msg
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		if err := n.Deliver(ctx, ownerID, &m); err != nil {
			logger.Errorf("push: deliver %s", logger.Fields{"user": ownerID, "msg": m.ID, "err": err})
		}
	}()
}

func (n *Notifier) ConversationUpdated(context.Context, string, *model.Conversation) {}

func (n *Notifier) TypingChanged(context.Context, string, chat.TypingEvent) {}

// Wait дожидается фоновых отправок (graceful shutdown).
func (n *Notifier) Wait() { n.wg.Wait() }

// Deliver рассылает пуш на все подписки пользователя параллельно.
// Подписки, на которые push-сервис ответил 404/410, удаляются.
func (n *Notifier) Deliver(ctx context.Context, userID string, msg *model.Message) error {
	if n.vapid == nil {
		return nil
	}
	subs, err := n.subs.List(ctx, userID)
	if err != nil {
		return err
	}
	if len(subs) == 0 {
		return nil
	}
	payload, err := json.Marshal(n.payload(ctx, msg))
	if err != nil {
		return err
	}

	var (
		mu    sync.Mutex
		stale []string
		g     errgroup.Group
	)
	g.SetLimit(maxParallel)
	for i := range subs {
		sub := subs[i]
		g.Go(func() error {
			resp, err := n.send(ctx, payload, &webpush.Subscription{
				Endpoint: sub.Endpoint,
				Keys:     webpush.Keys{P256dh: sub.Keys.P256dh, Auth: sub.Keys.Auth},
			}, n.vapid)
			if err != nil {
				logger.Errorf("push: send %s: %v", shortEndpoint(sub.Endpoint), err)
				return nil
			}
			resp.Body.Close()
			if resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound {
				mu.Lock()
				stale = append(stale, sub.Endpoint)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	for _, endpoint := range stale {
		if err := n.subs.Remove(ctx, userID, endpoint); err != nil {
			logger.Errorf("push: remove stale subscription %s: %v", shortEndpoint(endpoint), err)
		}
	}
	return nil
}

// payload берёт заголовок из имени отправителя, текст в переводе получателя.
func (n *Notifier) payload(ctx context.Context, msg *model.Message) Payload {
	title := "Новое сообщение"
	if u, err := n.users.User(ctx, msg.SenderID); err == nil && u.DisplayName != "" {
		title = u.DisplayName
	}
	body := msg.TranslatedText
	if body == "" {
		body = msg.OriginalText
	}
	if body == "" {
		body = "Вложение"
	}
	if r := []rune(body); len(r) > maxBodyRunes {
		body = string(r[:maxBodyRunes-3]) + "..."
	}
	chatID := msg.SenderID
	if msg.GroupID != "" {
		chatID = msg.GroupID
	}
	return Payload{Title: title, Body: body, Data: map[string]string{"chatId": chatID, "messageId": msg.ID}}
}

func shortEndpoint(s string) string {
	if len(s) > 50 {
		return s[:50]
	}
	return s
}
