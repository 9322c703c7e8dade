package i18n_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-formflow/pkg/i18n"
	"github.com/goliatone/go-formflow/pkg/model"
)

func writeCatalog(t *testing.T, dir, lang, body string) {
	t.Helper()
	target := filepath.Join(dir, "locales", lang)
	if err := os.MkdirAll(target, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(target, "page.yaml"), []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestWatch_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, dir, "en", "locale: en\nnamespace: page\nmessages:\n  title: First\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *i18n.MessageTable, 4)
	done := make(chan error, 1)
	go func() {
		done <- i18n.Watch(ctx, dir, func(table *i18n.MessageTable) { reloaded <- table }, nil)
	}()

	// Give the watcher a moment to register before writing.
	time.Sleep(100 * time.Millisecond)
	writeCatalog(t, dir, "en", "locale: en\nnamespace: page\nmessages:\n  title: Second\n")

	select {
	case table := <-reloaded:
		if got, _ := table.Lookup(model.LanguagePrimary, "page.title"); got != "Second" {
			t.Fatalf("expected reloaded text, got %q", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for reload")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("watch returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("watch did not stop after cancel")
	}
}
