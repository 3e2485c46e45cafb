package chat

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/lingochat/internal/model"
	"github.com/lingochat/internal/storage/memory"
)

func TestSendDirectHelloBecomesHola(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, memory.New())
	env.user(t, "alice", "en")
	env.user(t, "bob", "es")

	alice := env.svc.Manager("alice")
	msg, err := alice.Send(ctx, model.ChatTarget{UserID: "bob"}, "Hello")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if msg.OriginalLanguage != "en" || msg.TranslatedText != "Hola" || msg.TranslatedLanguage != "es" {
		t.Fatalf("unexpected translation: %+v", msg)
	}
	if msg.Status != model.MessageStatusSent {
		t.Fatalf("expected status sent, got %s", msg.Status)
	}

	row := conversationFor(t, alice, "bob")
	if row.LastMessage == nil || row.LastMessage.OriginalText != "Hello" {
		t.Fatalf("sender row must show the message: %+v", row.LastMessage)
	}
	if row.UnreadCount != 0 || row.IsGroup {
		t.Fatalf("unexpected sender row: %+v", row)
	}

	bob := env.svc.Manager("bob")
	inbox, err := bob.LoadMessages(ctx, "alice")
	if err != nil {
		t.Fatalf("load bob: %v", err)
	}
	if len(inbox) != 1 || inbox[0].ID != msg.ID {
		t.Fatalf("bob must receive the message, got %+v", inbox)
	}
	if inbox[0].TranslatedText != "Hola" || inbox[0].Status != model.MessageStatusDelivered {
		t.Fatalf("unexpected delivered copy: %+v", inbox[0])
	}
	if got := conversationFor(t, bob, "alice").UnreadCount; got != 1 {
		t.Fatalf("expected unread 1 for bob, got %d", got)
	}
	if len(env.rec.delivered["bob"]) != 1 || len(env.rec.delivered["alice"]) != 1 {
		t.Fatalf("expected one delivery event per side, got %v", env.rec.delivered)
	}
}

func TestSendSameLanguageIsNoopTranslation(t *testing.T) {
	env := newTestEnv(t, memory.New())
	env.user(t, "alice", "en")
	env.user(t, "carol", "en")

	msg, err := env.svc.Manager("alice").Send(context.Background(), model.ChatTarget{UserID: "carol"}, "Anything at all")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if msg.TranslatedText != msg.OriginalText || msg.TranslatedLanguage != "en" {
		t.Fatalf("expected untouched text, got %+v", msg)
	}
	if len(msg.Translations) != 0 {
		t.Fatalf("no translations expected, got %v", msg.Translations)
	}
}

func TestSendFallbackIsTaggedOriginal(t *testing.T) {
	env := newTestEnv(t, memory.New())
	env.user(t, "alice", "en")
	env.user(t, "bob", "es")

	msg, err := env.svc.Manager("alice").Send(context.Background(), model.ChatTarget{UserID: "bob"}, "Where is the station")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if msg.TranslatedText != "[ES] Where is the station" {
		t.Fatalf("unexpected fallback %q", msg.TranslatedText)
	}
}

func TestLoadMessagesRoundTrip(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, memory.New())
	env.user(t, "alice", "en")
	env.user(t, "bob", "es")
	alice := env.svc.Manager("alice")

	empty, err := alice.LoadMessages(ctx, "bob")
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty history, got %v %v", empty, err)
	}
	if _, err := alice.Send(ctx, model.ChatTarget{UserID: "bob"}, "Thank you"); err != nil {
		t.Fatalf("send 1: %v", err)
	}
	msg, err := alice.Send(ctx, model.ChatTarget{UserID: "bob"}, "Goodbye")
	if err != nil {
		t.Fatalf("send 2: %v", err)
	}
	log, err := alice.LoadMessages(ctx, "bob")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(log) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(log))
	}
	if !reflect.DeepEqual(log[len(log)-1], *msg) {
		t.Fatalf("last message differs:\n got %+v\nwant %+v", log[len(log)-1], *msg)
	}
	if log[0].Timestamp >= log[1].Timestamp {
		t.Fatalf("log must be chronological")
	}
}

func TestSendGroupFanOut(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, memory.New())
	env.user(t, "alice", "en")
	env.user(t, "bob", "es")
	env.user(t, "chloe", "fr")
	env.user(t, "dan", "es")
	env.user(t, "erin", "en")

	g, err := env.svc.CreateGroup(ctx, "alice", "Travel", []string{"bob", "chloe", "dan", "erin", "bob"})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	if len(g.Members) != 5 || g.Members[0].Role != model.GroupRoleAdmin || g.Members[2].PreferredLanguage != "fr" {
		t.Fatalf("unexpected members: %+v", g.Members)
	}

	msg, err := env.svc.Manager("alice").Send(ctx, model.ChatTarget{GroupID: g.ID}, "Hello")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	want := map[string]string{"es": "Hola", "fr": "Bonjour"}
	if !reflect.DeepEqual(msg.Translations, want) {
		t.Fatalf("translations = %v, want %v", msg.Translations, want)
	}
	if msg.TranslatedText != "Hola" || msg.TranslatedLanguage != "es" {
		t.Fatalf("group rendering must follow the first differing member: %+v", msg)
	}

	rendered := map[string]string{"bob": "Hola", "chloe": "Bonjour", "dan": "Hola", "erin": "Hello"}
	for uid, text := range rendered {
		m := env.svc.Manager(uid)
		log, err := m.LoadMessages(ctx, g.ID)
		if err != nil || len(log) != 1 {
			t.Fatalf("%s log: %v %v", uid, log, err)
		}
		if log[0].TranslatedText != text {
			t.Fatalf("%s sees %q, want %q", uid, log[0].TranslatedText, text)
		}
		row := conversationFor(t, m, g.ID)
		if !row.IsGroup || row.UnreadCount != 1 {
			t.Fatalf("%s row: %+v", uid, row)
		}
	}
	if row := conversationFor(t, env.svc.Manager("alice"), g.ID); row.UnreadCount != 0 {
		t.Fatalf("sender row must not count own message: %+v", row)
	}
}

func TestSendRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, memory.New())
	env.user(t, "alice", "en")
	env.user(t, "bob", "es")
	env.user(t, "chloe", "fr")
	alice := env.svc.Manager("alice")

	cases := []struct {
		name   string
		target model.ChatTarget
		text   string
		want   error
	}{
		{"no target", model.ChatTarget{}, "hi", ErrInvalidTarget},
		{"both targets", model.ChatTarget{UserID: "bob", GroupID: "g"}, "hi", ErrInvalidTarget},
		{"self", model.ChatTarget{UserID: "alice"}, "hi", ErrInvalidTarget},
		{"blank text", model.ChatTarget{UserID: "bob"}, "   ", ErrEmptyMessage},
		{"unknown user", model.ChatTarget{UserID: "zed"}, "hi", ErrNotFound},
		{"unknown group", model.ChatTarget{GroupID: "nope"}, "hi", ErrNotFound},
	}
	for _, tc := range cases {
		if _, err := alice.Send(ctx, tc.target, tc.text); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}

	g, err := env.svc.CreateGroup(ctx, "bob", "Closed", []string{"chloe"})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	if _, err := alice.Send(ctx, model.ChatTarget{GroupID: g.ID}, "hi"); !errors.Is(err, ErrNotMember) {
		t.Fatalf("expected ErrNotMember, got %v", err)
	}

	if err := alice.Block(ctx, "bob"); err != nil {
		t.Fatalf("block: %v", err)
	}
	if _, err := alice.Send(ctx, model.ChatTarget{UserID: "bob"}, "hi"); !errors.Is(err, ErrBlocked) {
		t.Fatalf("expected ErrBlocked, got %v", err)
	}
	if log, _ := alice.LoadMessages(ctx, "bob"); len(log) != 0 {
		t.Fatalf("rejected sends must not touch the log, got %d", len(log))
	}
}

func TestSendMediaWithoutText(t *testing.T) {
	env := newTestEnv(t, memory.New())
	env.user(t, "alice", "en")
	env.user(t, "bob", "es")

	msg, err := env.svc.Manager("alice").Send(context.Background(), model.ChatTarget{UserID: "bob"}, "",
		WithMedia(model.MediaTypeImage, "https://cdn.example/cat.png"))
	if err != nil {
		t.Fatalf("send media: %v", err)
	}
	if msg.MediaType != model.MediaTypeImage || msg.TranslatedText != "" || len(msg.Translations) != 0 {
		t.Fatalf("unexpected media message: %+v", msg)
	}
}

func TestReceiveDropsBlockedAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, memory.New())
	env.user(t, "alice", "en")
	env.user(t, "bob", "es")
	bob := env.svc.Manager("bob")

	in := model.Message{ID: "m1", SenderID: "alice", ReceiverID: "bob", OriginalText: "Hello", OriginalLanguage: "en", Timestamp: 10}
	for i := 0; i < 2; i++ {
		if err := bob.Receive(ctx, in); err != nil {
			t.Fatalf("receive %d: %v", i, err)
		}
	}
	row := conversationFor(t, bob, "alice")
	if row.UnreadCount != 1 {
		t.Fatalf("duplicate delivery must not count twice, unread=%d", row.UnreadCount)
	}
	if row.LastMessage.TranslatedText != "Hola" {
		t.Fatalf("receiver must render in own language, got %q", row.LastMessage.TranslatedText)
	}

	if err := bob.Block(ctx, "alice"); err != nil {
		t.Fatalf("block: %v", err)
	}
	if _, err := env.svc.Manager("alice").Send(ctx, model.ChatTarget{UserID: "bob"}, "Hello again"); err != nil {
		t.Fatalf("sender is not told about the block: %v", err)
	}
	log, _ := bob.LoadMessages(ctx, "alice")
	if len(log) != 1 {
		t.Fatalf("blocked sender's message must be dropped, log=%d", len(log))
	}
}

func TestForwardMessageKeepsOriginalAuthor(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, memory.New())
	env.user(t, "alice", "en")
	env.user(t, "bob", "es")
	env.user(t, "carol", "en")

	orig, err := env.svc.Manager("alice").Send(ctx, model.ChatTarget{UserID: "bob"}, "Hello")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	bob := env.svc.Manager("bob")
	fwd, err := bob.ForwardMessage(ctx, "alice", orig.ID, model.ChatTarget{UserID: "carol"})
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	if fwd.ForwardedFrom != "alice" || fwd.SenderID != "bob" || fwd.OriginalText != "Hello" || fwd.ID == orig.ID {
		t.Fatalf("unexpected forward: %+v", fwd)
	}
	again, err := env.svc.Manager("carol").ForwardMessage(ctx, "bob", fwd.ID, model.ChatTarget{UserID: "alice"})
	if err != nil {
		t.Fatalf("forward again: %v", err)
	}
	if again.ForwardedFrom != "alice" {
		t.Fatalf("chained forward must keep the first author, got %q", again.ForwardedFrom)
	}
	if _, err := bob.ForwardMessage(ctx, "alice", "missing", model.ChatTarget{UserID: "carol"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
