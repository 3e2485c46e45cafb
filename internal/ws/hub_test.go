package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lingochat/internal/chat"
	"github.com/lingochat/internal/model"
	"github.com/lingochat/internal/storage/memory"
	"github.com/lingochat/internal/translate"
)

type hubEnv struct {
	svc *chat.Service
	hub *Hub
	url string
}

func newHubEnv(t *testing.T, maxConns int) *hubEnv {
	t.Helper()
	svc := chat.NewService(memory.New(), translate.NewStub(nil, nil), chat.Options{})
	hub := NewHub(svc, maxConns)
	svc.AddNotifier(hub)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		cctx, ccancel := context.WithCancel(context.Background())
		c := NewClient(hub, conn, r.URL.Query().Get("user_id"))
		c.Start(cctx, ccancel)
		hub.Register(c)
	}))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	for _, id := range []string{"alice", "bob"} {
		if _, err := svc.CreateUser(context.Background(), chat.NewUser{ID: id, Username: id}); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	return &hubEnv{svc: svc, hub: hub, url: "ws" + strings.TrimPrefix(srv.URL, "http")}
}

func (e *hubEnv) dial(t *testing.T, userID string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(e.url+"?user_id="+userID, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timeout waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func (e *hubEnv) status(id string) model.UserStatus {
	u, err := e.svc.User(context.Background(), id)
	if err != nil {
		return ""
	}
	return u.Status
}

func TestHubConnectionLimit(t *testing.T) {
	e := newHubEnv(t, 1)
	e.dial(t, "alice")
	eventually(t, "alice registered", func() bool { return e.hub.Connected("alice") == 1 })

	bob := e.dial(t, "bob")
	bob.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := bob.ReadMessage(); err == nil {
		t.Fatalf("connection over the limit must be closed")
	}
	if n := e.hub.Connected("bob"); n != 0 {
		t.Fatalf("rejected client must not be registered, got %d", n)
	}
}

func TestHubTracksOnlineStatus(t *testing.T) {
	e := newHubEnv(t, 10)
	first := e.dial(t, "alice")
	second := e.dial(t, "alice")
	eventually(t, "two tabs", func() bool { return e.hub.Connected("alice") == 2 })
	eventually(t, "online", func() bool { return e.status("alice") == model.UserStatusOnline })

	first.Close()
	eventually(t, "one tab left", func() bool { return e.hub.Connected("alice") == 1 })
	if s := e.status("alice"); s != model.UserStatusOnline {
		t.Fatalf("user with an open tab must stay online, got %q", s)
	}

	second.Close()
	eventually(t, "offline", func() bool { return e.status("alice") == model.UserStatusOffline })
}

func TestHubReadEventResetsUnread(t *testing.T) {
	e := newHubEnv(t, 10)
	ctx := context.Background()
	if _, err := e.svc.Manager("alice").Send(ctx, model.ChatTarget{UserID: "bob"}, "hi"); err != nil {
		t.Fatalf("send: %v", err)
	}
	bob := e.dial(t, "bob")
	eventually(t, "bob registered", func() bool { return e.hub.Connected("bob") == 1 })

	if err := bob.WriteJSON(IncomingMessage{Type: EventRead, ChatID: "alice"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	eventually(t, "unread reset", func() bool {
		rows, err := e.svc.Manager("bob").ListConversations(ctx, chat.ConversationFilter{})
		return err == nil && len(rows) == 1 && rows[0].UnreadCount == 0
	})
}
