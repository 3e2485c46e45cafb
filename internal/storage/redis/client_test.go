package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	c, err := New(context.Background(), "redis://"+srv.Addr())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c, srv
}

func TestClientSetGetRemove(t *testing.T) {
	ctx := context.Background()
	c, srv := newTestClient(t)

	if err := c.Set(ctx, "conversations_u1", []byte(`[]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !srv.Exists("doc:conversations_u1") {
		t.Fatalf("expected prefixed key in redis, keys=%v", srv.Keys())
	}
	if ttl := srv.TTL("doc:conversations_u1"); ttl != 0 {
		t.Fatalf("documents must not expire, ttl=%v", ttl)
	}
	got, err := c.Get(ctx, "conversations_u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != `[]` {
		t.Fatalf("unexpected value %q", got)
	}
	if err := c.Remove(ctx, "conversations_u1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	got, err = c.Get(ctx, "conversations_u1")
	if err != nil || got != nil {
		t.Fatalf("expected miss after remove, got %q err=%v", got, err)
	}
}

func TestClientGetFailsWhenServerDown(t *testing.T) {
	c, srv := newTestClient(t)
	srv.Close()
	if _, err := c.Get(context.Background(), "users"); err == nil {
		t.Fatalf("expected error with server down")
	}
}

func TestNewRejectsBadURL(t *testing.T) {
	if _, err := New(context.Background(), "::not a url"); err == nil {
		t.Fatalf("expected parse error")
	}
}
