package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/navindex/internal/foundation/errors"
	"git.home.luguber.info/inful/navindex/internal/site"
	helpers "git.home.luguber.info/inful/navindex/internal/testutil/testutils"
)

func newStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func fixtureSnapshot(t *testing.T) (*site.Site, *Snapshot) {
	t.Helper()
	dir := helpers.WriteDoxygenSite(t, t.TempDir())
	s, err := site.Load(context.Background(), dir, site.Options{})
	require.NoError(t, err)
	snap, err := NewSnapshot(s)
	require.NoError(t, err)
	return s, snap
}

func TestSaveAndGet(t *testing.T) {
	st := newStore(t)
	ctx := t.Context()
	_, snap := fixtureSnapshot(t)

	id, created, err := st.Save(ctx, snap)
	require.NoError(t, err)
	require.True(t, created)
	_, err = uuid.Parse(id)
	require.NoError(t, err)

	got, err := st.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, snap.Fingerprint, got.Fingerprint)
	require.Equal(t, helpers.FixtureLinked, got.Stats.Linked)
	require.Equal(t, helpers.FixtureChunks, got.Stats.Chunks)

	payload, err := got.Decode()
	require.NoError(t, err)
	require.Equal(t, []string{"applications", "utilities", "files_dup"}, payload.Pages)
	require.Equal(t, helpers.FixtureTitle, payload.Tree[0].Title)
	require.Len(t, payload.Heads, helpers.FixtureChunks)

	_, err = st.Get(ctx, "missing")
	require.True(t, errors.HasCategory(err, errors.CategoryNotFound))
}

func TestSaveUnchangedFingerprintIsNoop(t *testing.T) {
	st := newStore(t)
	ctx := t.Context()
	s, snap := fixtureSnapshot(t)

	first, created, err := st.Save(ctx, snap)
	require.NoError(t, err)
	require.True(t, created)

	again, err := NewSnapshot(s)
	require.NoError(t, err)
	second, created, err := st.Save(ctx, again)
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, first, second)

	s.Tree.Root().Title = "DA16200 SDK v3"
	changed, err := NewSnapshot(s)
	require.NoError(t, err)
	changed.CreatedAt = snap.CreatedAt.Add(time.Second)
	third, created, err := st.Save(ctx, changed)
	require.NoError(t, err)
	require.True(t, created)
	require.NotEqual(t, first, third)

	latest, err := st.Latest(ctx, s.Dir)
	require.NoError(t, err)
	require.Equal(t, third, latest.ID)

	list, err := st.List(ctx, s.Dir, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, third, list[0].ID)

	list, err = st.List(ctx, "", 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestLatestUnknownSource(t *testing.T) {
	_, err := newStore(t).Latest(t.Context(), "/nowhere")
	require.True(t, errors.HasCategory(err, errors.CategoryNotFound))
}

func TestFileDatabasePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "navindex.db")
	st, err := NewSQLiteStore(path)
	require.NoError(t, err)
	_, snap := fixtureSnapshot(t)
	id, _, err := st.Save(t.Context(), snap)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	got, err := reopened.Get(t.Context(), id)
	require.NoError(t, err)
	require.Equal(t, snap.Source, got.Source)
}
