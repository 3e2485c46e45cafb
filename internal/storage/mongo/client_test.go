package mongo

import (
	"context"
	"os"
	"testing"
	"time"
)

// Интеграционный тест: нужен CHAT_TEST_MONGO_URI, иначе пропускается.
func integrationClient(t *testing.T) *Client {
	t.Helper()
	uri := os.Getenv("CHAT_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("CHAT_TEST_MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	c, err := New(ctx, uri, "lingochat_test")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestClientRoundTrip(t *testing.T) {
	c := integrationClient(t)
	ctx := context.Background()
	key := "test:messages_" + time.Now().Format("150405.000000000")
	t.Cleanup(func() { _ = c.Remove(context.Background(), key) })

	if got, err := c.Get(ctx, key); err != nil || got != nil {
		t.Fatalf("expected miss, got %q err=%v", got, err)
	}
	if err := c.Set(ctx, key, []byte(`[{"id":"m1"}]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := c.Set(ctx, key, []byte(`[{"id":"m2"}]`)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, err := c.Get(ctx, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != `[{"id":"m2"}]` {
		t.Fatalf("unexpected value %q", got)
	}

	if err := c.Remove(ctx, key); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got, err := c.Get(ctx, key); err != nil || got != nil {
		t.Fatalf("expected miss after remove, got %q err=%v", got, err)
	}
	if err := c.Remove(ctx, key); err != nil {
		t.Fatalf("remove of a missing key must succeed: %v", err)
	}
}
