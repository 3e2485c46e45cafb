package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lingochat/internal/model"
	"github.com/lingochat/internal/storage/memory"
)

func TestCreateUserValidation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, memory.New())

	u, err := env.svc.CreateUser(ctx, NewUser{Username: "  maria ", PreferredLanguage: "PT-br"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.ID == "" || u.Username != "maria" || u.DisplayName != "maria" || u.PreferredLanguage != "pt" {
		t.Fatalf("unexpected user %+v", u)
	}
	if _, err := env.svc.CreateUser(ctx, NewUser{Username: "MARIA"}); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
	if _, err := env.svc.CreateUser(ctx, NewUser{Username: ""}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := env.svc.CreateUser(ctx, NewUser{Username: "x", PreferredLanguage: "??"}); !errors.Is(err, ErrInvalidLanguage) {
		t.Fatalf("expected ErrInvalidLanguage, got %v", err)
	}
	def, err := env.svc.CreateUser(ctx, NewUser{Username: "noLang"})
	if err != nil || def.PreferredLanguage != "en" {
		t.Fatalf("default language: %+v %v", def, err)
	}
}

func TestCreateGroupRequiresKnownMembers(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, memory.New())
	env.user(t, "alice", "en")

	if _, err := env.svc.CreateGroup(ctx, "alice", "  ", nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := env.svc.CreateGroup(ctx, "alice", "G", []string{"ghost"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := env.svc.CreateGroup(ctx, "ghost", "G", nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for creator, got %v", err)
	}
}

func TestResolveTarget(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, memory.New())
	env.user(t, "alice", "en")
	env.user(t, "bob", "es")
	g, err := env.svc.CreateGroup(ctx, "alice", "G", []string{"bob"})
	if err != nil {
		t.Fatalf("group: %v", err)
	}

	if got, err := env.svc.ResolveTarget(ctx, g.ID); err != nil || got != (model.ChatTarget{GroupID: g.ID}) {
		t.Fatalf("group target: %+v %v", got, err)
	}
	if got, err := env.svc.ResolveTarget(ctx, "bob"); err != nil || got != (model.ChatTarget{UserID: "bob"}) {
		t.Fatalf("user target: %+v %v", got, err)
	}
	if _, err := env.svc.ResolveTarget(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTypingIndicatorExpires(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, memory.New())
	env.user(t, "alice", "en")
	env.user(t, "bob", "es")
	env.user(t, "chloe", "fr")
	alice, bob := env.svc.Manager("alice"), env.svc.Manager("bob")

	if err := alice.SetTyping(ctx, model.ChatTarget{UserID: "bob"}, true); err != nil {
		t.Fatalf("set typing: %v", err)
	}
	got, _ := bob.Typing(ctx, model.ChatTarget{UserID: "alice"})
	if !got["alice"] || len(got) != 1 {
		t.Fatalf("bob must see alice typing: %v", got)
	}
	if own, _ := alice.Typing(ctx, model.ChatTarget{UserID: "bob"}); len(own) != 0 {
		t.Fatalf("viewer is excluded: %v", own)
	}
	if other, _ := env.svc.Manager("chloe").Typing(ctx, model.ChatTarget{UserID: "alice"}); len(other) != 0 {
		t.Fatalf("typing is scoped to the chat: %v", other)
	}
	if evs := env.rec.typing["bob"]; len(evs) != 1 || evs[0].ChatID != "alice" || !evs[0].Typing {
		t.Fatalf("unexpected typing events %+v", evs)
	}

	env.clock.Advance(6 * time.Second)
	if got, _ := bob.Typing(ctx, model.ChatTarget{UserID: "alice"}); len(got) != 0 {
		t.Fatalf("typing must expire: %v", got)
	}

	g, err := env.svc.CreateGroup(ctx, "alice", "G", []string{"bob", "chloe"})
	if err != nil {
		t.Fatalf("group: %v", err)
	}
	_ = alice.SetTyping(ctx, model.ChatTarget{GroupID: g.ID}, true)
	_ = bob.SetTyping(ctx, model.ChatTarget{GroupID: g.ID}, true)
	seen, _ := env.svc.Manager("chloe").Typing(ctx, model.ChatTarget{GroupID: g.ID})
	if !seen["alice"] || !seen["bob"] || len(seen) != 2 {
		t.Fatalf("chloe must see both: %v", seen)
	}
	_ = bob.SetTyping(ctx, model.ChatTarget{GroupID: g.ID}, false)
	seen, _ = env.svc.Manager("chloe").Typing(ctx, model.ChatTarget{GroupID: g.ID})
	if len(seen) != 1 || !seen["alice"] {
		t.Fatalf("bob stopped typing: %v", seen)
	}
	env.user(t, "dave", "en")
	if _, err := env.svc.Manager("dave").Typing(ctx, model.ChatTarget{GroupID: g.ID}); !errors.Is(err, ErrNotMember) {
		t.Fatalf("outsider must not read group typing, got %v", err)
	}
	if err := alice.SetTyping(ctx, model.ChatTarget{}, true); !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget, got %v", err)
	}
}
