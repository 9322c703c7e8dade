package prefs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formflow/pkg/model"
)

// File stores preferences in a small YAML document, used by the terminal
// wizard so a second run skips the language prompt.
type File struct {
	mu   sync.Mutex
	path string
}

// NewFile returns a store backed by path. The file is created on first write.
func NewFile(path string) (*File, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("prefs: file path is required")
	}
	return &File{path: filepath.Clean(path)}, nil
}

// DefaultFilePath returns the per-user preferences path.
func DefaultFilePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("prefs: resolve config dir: %w", err)
	}
	return filepath.Join(dir, "formflow", "preferences.yaml"), nil
}

func (f *File) HasVisited(ctx context.Context) (bool, error) {
	snap, err := f.read(ctx)
	if err != nil {
		return false, err
	}
	return snap.HasVisited, nil
}

func (f *File) MarkVisited(ctx context.Context) error {
	return f.update(ctx, func(snap *Snapshot) { snap.HasVisited = true })
}

func (f *File) PreferredLanguage(ctx context.Context) (model.Language, bool, error) {
	snap, err := f.read(ctx)
	if err != nil {
		return "", false, err
	}
	if !snap.PreferredLanguage.Valid() {
		return "", false, nil
	}
	return snap.PreferredLanguage, true, nil
}

func (f *File) SetPreferredLanguage(ctx context.Context, lang model.Language) error {
	if !lang.Valid() {
		return errUnsupported(lang)
	}
	return f.update(ctx, func(snap *Snapshot) { snap.PreferredLanguage = lang })
}

func (f *File) read(ctx context.Context) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.readLocked()
}

func (f *File) readLocked() (Snapshot, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return Snapshot{}, nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("prefs: read %s: %w", f.path, err)
	}
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("prefs: parse %s: %w", f.path, err)
	}
	return snap, nil
}

func (f *File) update(ctx context.Context, mutate func(*Snapshot)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	snap, err := f.readLocked()
	if err != nil {
		return err
	}
	mutate(&snap)

	data, err := yaml.Marshal(snap)
	if err != nil {
		return fmt.Errorf("prefs: encode: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("prefs: create dir: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("prefs: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("prefs: replace %s: %w", f.path, err)
	}
	return nil
}

func errUnsupported(lang model.Language) error {
	return fmt.Errorf("prefs: unsupported language %q", lang)
}
