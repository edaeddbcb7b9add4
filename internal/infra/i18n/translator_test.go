//go:build !integration

package i18n_test

import (
	"testing"
	"testing/fstest"

	"telegram-media-relay/internal/infra/i18n"
)

func TestNewTranslator(t *testing.T) {
	t.Run("loads a catalog", func(t *testing.T) {
		fsys := fstest.MapFS{
			"locales/en.yaml": {Data: []byte("greeting: \"Hello\"\nreport: \"%d delivered\"\n")},
		}
		tr, err := i18n.NewTranslator(fsys, "en")
		if err != nil {
			t.Fatalf("NewTranslator returned error: %v", err)
		}
		if got := tr.T("greeting"); got != "Hello" {
			t.Errorf("T(greeting) = %q", got)
		}
	})

	t.Run("missing catalog file fails", func(t *testing.T) {
		if _, err := i18n.NewTranslator(fstest.MapFS{}, "en"); err == nil {
			t.Error("expected error for missing catalog")
		}
	})

	t.Run("malformed yaml fails", func(t *testing.T) {
		fsys := fstest.MapFS{
			"locales/en.yaml": {Data: []byte("greeting: [unclosed")},
		}
		if _, err := i18n.NewTranslator(fsys, "en"); err == nil {
			t.Error("expected error for malformed catalog")
		}
	})
}

func TestTranslatorT(t *testing.T) {
	fsys := fstest.MapFS{
		"locales/en.yaml": {Data: []byte("report: \"%d delivered, %d failed\"\n")},
	}
	tr, err := i18n.NewTranslator(fsys, "en")
	if err != nil {
		t.Fatal(err)
	}

	t.Run("formats arguments", func(t *testing.T) {
		if got := tr.T("report", 3, 1); got != "3 delivered, 1 failed" {
			t.Errorf("T(report) = %q", got)
		}
	})

	t.Run("unknown key echoes the key", func(t *testing.T) {
		if got := tr.T("nope"); got != "nope" {
			t.Errorf("T(nope) = %q", got)
		}
	})
}

func TestEmbeddedCatalog(t *testing.T) {
	tr, err := i18n.NewTranslator(i18n.LocalesFS, "en")
	if err != nil {
		t.Fatalf("embedded catalog failed to load: %v", err)
	}
	for _, key := range []string{
		"join_required", "broadcast_prompt_content", "broadcast_prompt_button",
		"broadcast_report", "select_format", "select_format_instagram",
		"download_link", "variant_unavailable", "usage_hint", "rate_limited",
	} {
		if tr.T(key) == key {
			t.Errorf("embedded catalog is missing %q", key)
		}
	}
}
