// Package prefs persists the two visitor flags that survive page loads: whether
// the visitor has already chosen a language, and which language they chose.
package prefs

import (
	"context"
	"errors"
	"sync"

	"github.com/goliatone/go-formflow/pkg/model"
)

// ErrNotFound is returned by backends when a visitor has no stored record.
var ErrNotFound = errors.New("prefs: not found")

// Store reads and writes one visitor's preferences.
type Store interface {
	HasVisited(ctx context.Context) (bool, error)
	MarkVisited(ctx context.Context) error
	PreferredLanguage(ctx context.Context) (model.Language, bool, error)
	SetPreferredLanguage(ctx context.Context, lang model.Language) error
}

// Snapshot is the persisted shape shared by the file and SQL backends.
type Snapshot struct {
	HasVisited        bool           `json:"hasVisited" yaml:"hasVisited"`
	PreferredLanguage model.Language `json:"preferredLanguage,omitempty" yaml:"preferredLanguage,omitempty"`
}

// Memory keeps preferences in process memory. The zero value is ready to use.
type Memory struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewMemory returns a store seeded with snap.
func NewMemory(snap Snapshot) *Memory {
	return &Memory{snap: snap}
}

func (m *Memory) HasVisited(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap.HasVisited, nil
}

func (m *Memory) MarkVisited(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap.HasVisited = true
	return nil
}

func (m *Memory) PreferredLanguage(ctx context.Context) (model.Language, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.snap.PreferredLanguage.Valid() {
		return "", false, nil
	}
	return m.snap.PreferredLanguage, true, nil
}

func (m *Memory) SetPreferredLanguage(ctx context.Context, lang model.Language) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !lang.Valid() {
		return errUnsupported(lang)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap.PreferredLanguage = lang
	return nil
}

// Snapshot returns a copy of the stored flags.
func (m *Memory) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap
}
