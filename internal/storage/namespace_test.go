package storage_test

import (
	"context"
	"testing"

	"github.com/lingochat/internal/storage"
	"github.com/lingochat/internal/storage/memory"
)

func TestNamespaceIsolatesOwners(t *testing.T) {
	ctx := context.Background()
	root := memory.New()
	alice := storage.Namespace(root, "alice")
	bob := storage.Namespace(root, "bob")

	if err := alice.Set(ctx, storage.MessagesKey("g1"), []byte(`["a"]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := bob.Get(ctx, storage.MessagesKey("g1"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatalf("bob must not see alice's log, got %q", got)
	}
	raw, _ := root.Get(ctx, "device:alice:messages_g1")
	if string(raw) != `["a"]` {
		t.Fatalf("expected prefixed key in root store, got %q", raw)
	}
	if err := alice.Close(); err != nil {
		t.Fatalf("close view: %v", err)
	}
	if err := root.Set(ctx, "users", []byte(`[]`)); err != nil {
		t.Fatalf("closing a view must not close the root: %v", err)
	}
}

func TestKeyShapes(t *testing.T) {
	cases := map[string]string{
		storage.MessagesKey("c1"):      "messages_c1",
		storage.ConversationsKey("u1"): "conversations_u1",
		storage.ReactionsKey("c1"):     "reactions_c1",
		storage.StarredKey("u1"):       "starred_u1",
		storage.BlockedKey("u1"):       "blocked_u1",
	}
	for got, want := range cases {
		if got != want {
			t.Fatalf("key %q, want %q", got, want)
		}
	}
}
