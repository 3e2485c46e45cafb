package translate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestScriptDetector(t *testing.T) {
	d := NewScriptDetector("")
	cases := []struct {
		text string
		want string
	}{
		{"Hello", "en"},
		{"Hola amigo", "en"},
		{"مرحبا", "ar"},
		{"안녕하세요", "ko"},
		{"こんにちは", "ja"},
		{"今日は雨です", "zh"},
		{"日本語のテキスト", "ja"},
		{"你好", "zh"},
		{"Привет", "ru"},
		{"Γεια σας", "el"},
		{"ok Привет", "ru"},
		{"", "en"},
	}
	for _, tc := range cases {
		if got := d.Detect(tc.text); got != tc.want {
			t.Fatalf("Detect(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}

func TestStubTranslate(t *testing.T) {
	s := NewStub(nil, nil)
	ctx := context.Background()
	cases := []struct {
		name, text, from, to, want string
	}{
		{"dictionary hit", "Hello", "en", "es", "Hola"},
		{"case insensitive", "  hello ", "en", "es", "Hola"},
		{"same language", "Hello", "en", "en", "Hello"},
		{"same base language", "Hello", "en", "en-GB", "Hello"},
		{"fallback", "Where is the station", "en", "es", "[ES] Where is the station"},
		{"fallback keeps original tag", "Where", "en", "pt-BR", "[PT-BR] Where"},
		{"reverse pair", "Gracias", "es", "en", "Thank you"},
	}
	for _, tc := range cases {
		got, err := s.Translate(ctx, tc.text, tc.from, tc.to)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestStubTranslateCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewStub(nil, nil).Translate(ctx, "Hello", "en", "es"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNormalize(t *testing.T) {
	got, err := Normalize("es-MX")
	if err != nil || got != "es" {
		t.Fatalf("Normalize(es-MX) = %q, %v", got, err)
	}
	got, err = Normalize("EN")
	if err != nil || got != "en" {
		t.Fatalf("Normalize(EN) = %q, %v", got, err)
	}
	if _, err := Normalize(""); !errors.Is(err, ErrInvalidLanguage) {
		t.Fatalf("expected ErrInvalidLanguage for empty code, got %v", err)
	}
	if _, err := Normalize("not a language!"); !errors.Is(err, ErrInvalidLanguage) {
		t.Fatalf("expected ErrInvalidLanguage, got %v", err)
	}
}

func TestDictionaryLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dict.yaml")
	yml := "en:\n  es:\n    Where is the station: ¿Dónde está la estación?\n"
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	d := BuiltinDictionary()
	before := d.Len()
	if err := d.LoadFile(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if d.Len() != before+1 {
		t.Fatalf("expected one extra entry, got %d -> %d", before, d.Len())
	}
	got, err := NewStub(d, nil).Translate(context.Background(), "where is the station", "en", "es")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if got != "¿Dónde está la estación?" {
		t.Fatalf("unexpected translation %q", got)
	}
	if err := d.LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
