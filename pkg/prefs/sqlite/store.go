// Package sqlite persists visitor preferences in a SQLite database so the
// HTTP server remembers language choices across restarts.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/prefs"
	"github.com/goliatone/go-formflow/pkg/prefs/sqlite/migrations"
)

// Store provides SQLite-backed persistence keyed by visitor ID.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens and migrates a preferences database. Use ":memory:" for an
// ephemeral store.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := ":memory:"
	if path != ":memory:" {
		dsn = filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if path == ":memory:" {
		// each pooled connection would otherwise get its own database
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get loads a visitor's preferences. Missing visitors yield prefs.ErrNotFound.
func (s *Store) Get(ctx context.Context, visitorID string) (prefs.Snapshot, error) {
	if err := s.check(visitorID); err != nil {
		return prefs.Snapshot{}, err
	}
	var visited int64
	var lang string
	err := s.db.QueryRowContext(ctx,
		`SELECT has_visited, preferred_language FROM visitor_preferences WHERE visitor_id = ?`,
		visitorID,
	).Scan(&visited, &lang)
	if errors.Is(err, sql.ErrNoRows) {
		return prefs.Snapshot{}, prefs.ErrNotFound
	}
	if err != nil {
		return prefs.Snapshot{}, fmt.Errorf("get visitor preferences: %w", err)
	}
	return prefs.Snapshot{HasVisited: visited != 0, PreferredLanguage: model.Language(lang)}, nil
}

// Put upserts a visitor's preferences.
func (s *Store) Put(ctx context.Context, visitorID string, snap prefs.Snapshot) error {
	if err := s.check(visitorID); err != nil {
		return err
	}
	visited := 0
	if snap.HasVisited {
		visited = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO visitor_preferences (visitor_id, has_visited, preferred_language, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(visitor_id) DO UPDATE SET
		   has_visited = excluded.has_visited,
		   preferred_language = excluded.preferred_language,
		   updated_at = excluded.updated_at`,
		visitorID, visited, string(snap.PreferredLanguage), s.now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("put visitor preferences: %w", err)
	}
	return nil
}

// Delete removes a visitor's record.
func (s *Store) Delete(ctx context.Context, visitorID string) error {
	if err := s.check(visitorID); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM visitor_preferences WHERE visitor_id = ?`, visitorID); err != nil {
		return fmt.Errorf("delete visitor preferences: %w", err)
	}
	return nil
}

// Visitor returns a prefs.Store scoped to one visitor.
func (s *Store) Visitor(visitorID string) prefs.Store {
	return &visitorStore{store: s, id: visitorID}
}

func (s *Store) check(visitorID string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(visitorID) == "" {
		return fmt.Errorf("visitor id is required")
	}
	return nil
}

type visitorStore struct {
	store *Store
	id    string
}

func (v *visitorStore) load(ctx context.Context) (prefs.Snapshot, error) {
	snap, err := v.store.Get(ctx, v.id)
	if errors.Is(err, prefs.ErrNotFound) {
		return prefs.Snapshot{}, nil
	}
	return snap, err
}

func (v *visitorStore) HasVisited(ctx context.Context) (bool, error) {
	snap, err := v.load(ctx)
	return snap.HasVisited, err
}

func (v *visitorStore) MarkVisited(ctx context.Context) error {
	snap, err := v.load(ctx)
	if err != nil {
		return err
	}
	snap.HasVisited = true
	return v.store.Put(ctx, v.id, snap)
}

func (v *visitorStore) PreferredLanguage(ctx context.Context) (model.Language, bool, error) {
	snap, err := v.load(ctx)
	if err != nil {
		return "", false, err
	}
	if !snap.PreferredLanguage.Valid() {
		return "", false, nil
	}
	return snap.PreferredLanguage, true, nil
}

func (v *visitorStore) SetPreferredLanguage(ctx context.Context, lang model.Language) error {
	if !lang.Valid() {
		return fmt.Errorf("unsupported language %q", lang)
	}
	snap, err := v.load(ctx)
	if err != nil {
		return err
	}
	snap.PreferredLanguage = lang
	return v.store.Put(ctx, v.id, snap)
}
