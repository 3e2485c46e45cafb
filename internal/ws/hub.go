package ws

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/lingochat/internal/chat"
	"github.com/lingochat/internal/logger"
	"github.com/lingochat/internal/model"
)

const (
	handleTimeout = 5 * time.Second
	statusTimeout = 5 * time.Second
)

// Hub держит подключения по пользователям и реализует chat.Notifier:
// события из ядра уходят во все открытые вкладки владельца.
type Hub struct {
	mu         sync.RWMutex
	clients    map[string]map[*Client]struct{}
	total      int
	maxConns   int
	svc        *chat.Service
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

var _ chat.Notifier = (*Hub)(nil)

func NewHub(svc *chat.Service, maxConns int) *Hub {
	if maxConns <= 0 {
		maxConns = 10000
	}
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		maxConns:   maxConns,
		svc:        svc,
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

func (h *Hub) shutdown() {
	// Собираем под локом, закрываем без него (сетевой I/O).
	h.mu.Lock()
	all := make([]*Client, 0, h.total)
	for _, clients := range h.clients {
		for c := range clients {
			all = append(all, c)
		}
	}
	h.clients = make(map[string]map[*Client]struct{})
	h.total = 0
	h.mu.Unlock()

	for _, c := range all {
		c.Close()
	}
	for _, c := range all {
		c.Wait()
	}
}

func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	if h.total >= h.maxConns {
		h.mu.Unlock()
		logger.Errorf("ws connection limit reached (%d), rejecting user=%s", h.maxConns, c.userID)
		c.Close()
		return
	}
	first := len(h.clients[c.userID]) == 0
	if first {
		h.clients[c.userID] = make(map[*Client]struct{})
	}
	h.clients[c.userID][c] = struct{}{}
	h.total++
	h.mu.Unlock()

	if first {
		h.setStatus(c.userID, model.UserStatusOnline)
	}
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	clients, ok := h.clients[c.userID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, exists := clients[c]; !exists {
		h.mu.Unlock()
		return
	}
	delete(clients, c)
	h.total--
	last := len(clients) == 0
	if last {
		delete(h.clients, c.userID)
	}
	h.mu.Unlock()

	c.Close()
	if last {
		h.setStatus(c.userID, model.UserStatusOffline)
	}
}

func (h *Hub) setStatus(userID string, status model.UserStatus) {
	ctx, cancel := context.WithTimeout(context.Background(), statusTimeout)
	defer cancel()
	if _, err := h.svc.Manager(userID).UpdateProfile(ctx, chat.ProfileUpdate{Status: &status}); err != nil {
		logger.Errorf("ws set status %s", logger.Fields{"user": userID, "status": status, "err": err})
	}
}

// Connected: число открытых соединений пользователя.
func (h *Hub) Connected(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// HandleMessage dispatches incoming WebSocket messages.
func (h *Hub) HandleMessage(ctx context.Context, c *Client, msg IncomingMessage) {
	ctx, cancel := context.WithTimeout(ctx, handleTimeout)
	defer cancel()
	switch msg.Type {
	case EventSend:
		h.handleSend(ctx, c, msg)
	case EventTyping:
		h.handleTyping(ctx, c, msg)
	case EventRead:
		h.handleRead(ctx, c, msg)
	default:
		h.sendError(c, "unknown event type")
	}
}

// target: явные userId/groupId важнее chatId.
func (h *Hub) target(ctx context.Context, msg IncomingMessage) (model.ChatTarget, error) {
	t := model.ChatTarget{UserID: msg.UserID, GroupID: msg.GroupID}
	if t.Valid() {
		return t, nil
	}
	if msg.ChatID == "" {
		return model.ChatTarget{}, chat.ErrInvalidTarget
	}
	return h.svc.ResolveTarget(ctx, msg.ChatID)
}

func (h *Hub) handleSend(ctx context.Context, c *Client, msg IncomingMessage) {
	defer logger.DeferLogDuration("ws.handleSend", time.Now())()
	target, err := h.target(ctx, msg)
	if err != nil {
		h.sendError(c, errorText(err))
		return
	}
	var opts []chat.SendOption
	if msg.MediaURL != "" {
		opts = append(opts, chat.WithMedia(msg.MediaType, msg.MediaURL))
	}
	// Отправителю сообщение придёт через MessageDelivered, как и получателям.
	if _, err := h.svc.Manager(c.userID).Send(ctx, target, msg.Text, opts...); err != nil {
		logger.Errorf("ws send %s", logger.Fields{"user": c.userID, "chat": target.ChatID(), "err": err})
		h.sendError(c, errorText(err))
	}
}

func (h *Hub) handleTyping(ctx context.Context, c *Client, msg IncomingMessage) {
	target, err := h.target(ctx, msg)
	if err != nil {
		h.sendError(c, errorText(err))
		return
	}
	if err := h.svc.Manager(c.userID).SetTyping(ctx, target, msg.Typing); err != nil {
		h.sendError(c, errorText(err))
	}
}

func (h *Hub) handleRead(ctx context.Context, c *Client, msg IncomingMessage) {
	if msg.ChatID == "" {
		h.sendError(c, "chatId required")
		return
	}
	if _, err := h.svc.Manager(c.userID).MarkAsRead(ctx, msg.ChatID); err != nil {
		logger.Errorf("ws mark read %s", logger.Fields{"user": c.userID, "chat": msg.ChatID, "err": err})
		h.sendError(c, errorText(err))
	}
}

func errorText(err error) string {
	switch {
	case errors.Is(err, chat.ErrInvalidTarget):
		return "invalid target"
	case errors.Is(err, chat.ErrEmptyMessage):
		return "empty message"
	case errors.Is(err, chat.ErrBlocked):
		return "blocked"
	case errors.Is(err, chat.ErrNotMember):
		return "not a member"
	case errors.Is(err, chat.ErrNotFound):
		return "not found"
	default:
		return "internal error"
	}
}

func (h *Hub) MessageDelivered(_ context.Context, ownerID string, msg *model.Message) {
	h.sendToUser(ownerID, OutgoingMessage{Type: EventNewMessage, Payload: msg})
}

func (h *Hub) ConversationUpdated(_ context.Context, ownerID string, conv *model.Conversation) {
	h.sendToUser(ownerID, OutgoingMessage{Type: EventConversationUpdated, Payload: conv})
}

func (h *Hub) TypingChanged(_ context.Context, viewerID string, ev chat.TypingEvent) {
	h.sendToUser(viewerID, OutgoingMessage{Type: EventTyping, Payload: ev})
}

func (h *Hub) sendError(c *Client, text string) {
	h.sendToClient(c, OutgoingMessage{Type: EventError, Payload: ErrorPayload{Message: text}})
}

func (h *Hub) sendToUser(userID string, msg OutgoingMessage) {
	h.mu.RLock()
	clients, ok := h.clients[userID]
	if !ok {
		h.mu.RUnlock()
		return
	}
	targets := make([]*Client, 0, len(clients))
	for c := range clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		h.sendToClient(c, msg)
	}
}

func (h *Hub) sendToClient(c *Client, msg OutgoingMessage) {
	select {
	case c.send <- msg:
	case <-c.done:
	default:
		// Буфер полон: медленный клиент закрывается.
		logger.Errorf("ws send buffer full, closing slow client user=%s", c.userID)
		c.Close()
	}
}

func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		c.Close()
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}
