package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lingochat/internal/model"
	"github.com/lingochat/internal/storage"
	"github.com/lingochat/internal/storage/memory"
	"github.com/lingochat/internal/translate"
)

var errStoreDown = errors.New("store down")

// fakeClock сдвигается на 1ms при каждом чтении, чтобы timestamps были различимы.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.UnixMilli(1_700_000_000_000)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Millisecond)
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// faultyStore: memory.Client, у которого Set можно заставить падать по ключу.
type faultyStore struct {
	*memory.Client
	mu      sync.Mutex
	failSet func(key string) bool
}

func newFaultyStore() *faultyStore {
	return &faultyStore{Client: memory.New()}
}

func (f *faultyStore) setFault(fn func(key string) bool) {
	f.mu.Lock()
	f.failSet = fn
	f.mu.Unlock()
}

func (f *faultyStore) Set(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	fail := f.failSet != nil && f.failSet(key)
	f.mu.Unlock()
	if fail {
		return errStoreDown
	}
	return f.Client.Set(ctx, key, value)
}

type recorder struct {
	mu        sync.Mutex
	delivered map[string][]model.Message
	updated   map[string]int
	typing    map[string][]TypingEvent
}

func newRecorder() *recorder {
	return &recorder{
		delivered: make(map[string][]model.Message),
		updated:   make(map[string]int),
		typing:    make(map[string][]TypingEvent),
	}
}

func (r *recorder) MessageDelivered(_ context.Context, ownerID string, msg *model.Message) {
	r.mu.Lock()
	r.delivered[ownerID] = append(r.delivered[ownerID], *msg)
	r.mu.Unlock()
}

func (r *recorder) ConversationUpdated(_ context.Context, ownerID string, _ *model.Conversation) {
	r.mu.Lock()
	r.updated[ownerID]++
	r.mu.Unlock()
}

func (r *recorder) TypingChanged(_ context.Context, viewerID string, ev TypingEvent) {
	r.mu.Lock()
	r.typing[viewerID] = append(r.typing[viewerID], ev)
	r.mu.Unlock()
}

type testEnv struct {
	svc   *Service
	clock *fakeClock
	rec   *recorder
}

func newTestEnv(t *testing.T, store storage.DocumentStore) *testEnv {
	t.Helper()
	clock := newFakeClock()
	svc := NewService(store, translate.NewStub(nil, nil), Options{Clock: clock.Now, TypingTTL: 5 * time.Second})
	rec := newRecorder()
	svc.AddNotifier(rec)
	return &testEnv{svc: svc, clock: clock, rec: rec}
}

func (e *testEnv) user(t *testing.T, id, lang string) *model.User {
	t.Helper()
	u, err := e.svc.CreateUser(context.Background(), NewUser{ID: id, Username: id, PreferredLanguage: lang})
	if err != nil {
		t.Fatalf("create user %s: %v", id, err)
	}
	return u
}

func conversationFor(t *testing.T, m *Manager, chatID string) model.Conversation {
	t.Helper()
	rows, err := m.convs.List(context.Background(), m.ownerID)
	if err != nil {
		t.Fatalf("list rows: %v", err)
	}
	for _, r := range rows {
		if r.ChatID() == chatID {
			return r
		}
	}
	t.Fatalf("no conversation %s for %s", chatID, m.ownerID)
	return model.Conversation{}
}

func seedRows(t *testing.T, m *Manager, rows ...model.Conversation) {
	t.Helper()
	if err := m.convs.Save(context.Background(), m.ownerID, rows); err != nil {
		t.Fatalf("seed rows: %v", err)
	}
}

func ids(rows []model.Conversation) []string {
	out := make([]string, len(rows))
	for i := range rows {
		out[i] = rows[i].ID
	}
	return out
}
