package memory

import (
	"context"
	"errors"
	"testing"
)

func TestClientGetMissIsNotAnError(t *testing.T) {
	c := New()
	v, err := c.Get(context.Background(), "messages_nobody")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if v != nil {
		t.Fatalf("expected nil value on miss, got %q", v)
	}
}

func TestClientCopiesValues(t *testing.T) {
	ctx := context.Background()
	c := New()
	in := []byte(`{"a":1}`)
	if err := c.Set(ctx, "k", in); err != nil {
		t.Fatalf("set: %v", err)
	}
	in[0] = 'X'
	out, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(out) != `{"a":1}` {
		t.Fatalf("stored value was mutated through caller slice: %q", out)
	}
	out[0] = 'Y'
	again, _ := c.Get(ctx, "k")
	if string(again) != `{"a":1}` {
		t.Fatalf("stored value was mutated through returned slice: %q", again)
	}
}

func TestClientRemoveAndClose(t *testing.T) {
	ctx := context.Background()
	c := New()
	_ = c.Set(ctx, "k", []byte(`1`))
	if err := c.Remove(ctx, "k"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := c.Remove(ctx, "k"); err != nil {
		t.Fatalf("remove missing key: %v", err)
	}
	if len(c.Keys()) != 0 {
		t.Fatalf("expected no keys, got %v", c.Keys())
	}
	_ = c.Close()
	if err := c.Set(ctx, "k", []byte(`1`)); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed after Close, got %v", err)
	}
}
