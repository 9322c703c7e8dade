package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/prefs"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "prefs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(context.Background(), "  ")
	require.Error(t, err)
}

func TestVisitorStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTempStore(t)

	_, err := store.Get(ctx, "visitor-1")
	require.True(t, errors.Is(err, prefs.ErrNotFound))

	visitor := store.Visitor("visitor-1")
	visited, err := visitor.HasVisited(ctx)
	require.NoError(t, err)
	assert.False(t, visited)

	require.NoError(t, visitor.SetPreferredLanguage(ctx, model.LanguageSecondary))
	require.NoError(t, visitor.MarkVisited(ctx))

	snap, err := store.Get(ctx, "visitor-1")
	require.NoError(t, err)
	assert.Equal(t, prefs.Snapshot{HasVisited: true, PreferredLanguage: model.LanguageSecondary}, snap)

	other := store.Visitor("visitor-2")
	_, ok, err := other.PreferredLanguage(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "visitors must not share preferences")
}

func TestMigrationsAreIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "prefs.db")

	first, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, first.Put(ctx, "v", prefs.Snapshot{HasVisited: true}))
	require.NoError(t, first.Close())

	second, err := Open(ctx, path)
	require.NoError(t, err)
	defer second.Close()

	snap, err := second.Get(ctx, "v")
	require.NoError(t, err)
	assert.True(t, snap.HasVisited)
}

func TestRejectsUnsupportedLanguage(t *testing.T) {
	store := openTempStore(t)
	err := store.Visitor("v").SetPreferredLanguage(context.Background(), model.Language("fr"))
	require.Error(t, err)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	store := openTempStore(t)
	require.NoError(t, store.Put(ctx, "v", prefs.Snapshot{HasVisited: true}))
	require.NoError(t, store.Delete(ctx, "v"))
	_, err := store.Get(ctx, "v")
	assert.ErrorIs(t, err, prefs.ErrNotFound)
}

func TestExtractUp(t *testing.T) {
	got := extractUp("-- +migrate Up\nCREATE TABLE a;\n-- +migrate Down\nDROP TABLE a;")
	assert.Equal(t, "\nCREATE TABLE a;\n", got)
	assert.Equal(t, "SELECT 1;", extractUp("SELECT 1;"))
}
