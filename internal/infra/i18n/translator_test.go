//go:build !integration

package i18n

import (
	"testing"
	"testing/fstest"
)

func TestTranslator(t *testing.T) {
	translator, err := newTranslatorFromBytes([]byte("greeting: Halo\nwelcome_user: Halo %s"))
	if err != nil {
		t.Fatalf("newTranslatorFromBytes failed: %v", err)
	}

	t.Run("should translate a simple key", func(t *testing.T) {
		if got := translator.T("greeting"); got != "Halo" {
			t.Errorf("wanted 'Halo', got '%s'", got)
		}
	})

	t.Run("should return key if not found", func(t *testing.T) {
		if got := translator.T("nonexistent_key"); got != "nonexistent_key" {
			t.Errorf("wanted 'nonexistent_key', got '%s'", got)
		}
	})

	t.Run("should format arguments correctly", func(t *testing.T) {
		if got := translator.T("welcome_user", "Budi"); got != "Halo Budi" {
			t.Errorf("wanted 'Halo Budi', got '%s'", got)
		}
	})

	t.Run("should report missing required keys", func(t *testing.T) {
		if err := translator.Validate(); err == nil {
			t.Error("expected validation error for incomplete catalogue")
		}
	})
}

func TestEmbeddedLocalesAreComplete(t *testing.T) {
	for _, lang := range []string{"en", "id"} {
		tr, err := NewTranslator(LocalesFS, lang)
		if err != nil {
			t.Fatalf("%s: %v", lang, err)
		}
		if err := tr.Validate(); err != nil {
			t.Errorf("%s: %v", lang, err)
		}
		if tr.Lang() != lang {
			t.Errorf("Lang() = %q, want %q", tr.Lang(), lang)
		}
	}
}

func TestNewTranslator_UnknownLanguage(t *testing.T) {
	fsys := fstest.MapFS{"locales/en.yaml": {Data: []byte("greeting: hi")}}
	if _, err := NewTranslator(fsys, "xx"); err == nil {
		t.Fatal("expected error for unknown language")
	}
}
