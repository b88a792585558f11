package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/wikimap"
	"github.com/fwojciec/wikimap/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	home1105  = "https://wiki.alkit.se/wice1105/index.php/Main_Page"
	setup1105 = "https://wiki.alkit.se/wice1105/index.php/Setup"
	home1104  = "https://wiki.alkit.se/wice1104/index.php/Main_Page"
)

func sampleMap() wikimap.VersionMap {
	return wikimap.VersionMap{
		"11.04": {
			{URL: home1104, Title: wikimap.HomeTitle},
		},
		"11.05": {
			{URL: home1105, Title: wikimap.HomeTitle},
			{URL: setup1105, Title: "Setup", Context: "read Setup before installing"},
		},
	}
}

// clock returns a Now func that advances one second per call.
func clock() func() time.Time {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

func TestMapStore_SaveMap(t *testing.T) {
	t.Parallel()

	t.Run("round trips links in position order", func(t *testing.T) {
		t.Parallel()

		store := sqlite.NewMapStore(setupTestDB(t))
		ctx := context.Background()

		require.NoError(t, store.SaveMap(ctx, sampleMap()))
		got, err := store.LoadMap(ctx)

		require.NoError(t, err)
		assert.Equal(t, sampleMap(), got)
	})

	t.Run("load returns the most recent run", func(t *testing.T) {
		t.Parallel()

		store := sqlite.NewMapStore(setupTestDB(t))
		store.Now = clock()
		ctx := context.Background()

		require.NoError(t, store.SaveMap(ctx, sampleMap()))
		next := wikimap.VersionMap{"11.05": {{URL: home1105, Title: wikimap.HomeTitle}}}
		require.NoError(t, store.SaveMap(ctx, next))

		got, err := store.LoadMap(ctx)
		require.NoError(t, err)
		assert.Equal(t, next, got)
	})

	t.Run("rejects namespace URLs and stores nothing", func(t *testing.T) {
		t.Parallel()

		store := sqlite.NewMapStore(setupTestDB(t))
		ctx := context.Background()

		bad := wikimap.VersionMap{"11.05": {{URL: "https://wiki.alkit.se/wice1105/index.php/Special:RecentChanges"}}}
		err := store.SaveMap(ctx, bad)

		assert.Equal(t, wikimap.EINVALID, wikimap.ErrorCode(err))
		_, err = store.LoadMap(ctx)
		assert.Equal(t, wikimap.ENOTFOUND, wikimap.ErrorCode(err))
	})

	t.Run("load returns not found when empty", func(t *testing.T) {
		t.Parallel()

		_, err := sqlite.NewMapStore(setupTestDB(t)).LoadMap(context.Background())

		assert.Equal(t, wikimap.ENOTFOUND, wikimap.ErrorCode(err))
	})
}

func TestMapStore_FindOwner(t *testing.T) {
	t.Parallel()

	store := sqlite.NewMapStore(setupTestDB(t))
	ctx := context.Background()
	require.NoError(t, store.SaveMap(ctx, sampleMap()))

	t.Run("returns owning version", func(t *testing.T) {
		t.Parallel()

		v, err := store.FindOwner(ctx, setup1105)

		require.NoError(t, err)
		assert.Equal(t, wikimap.VersionID("11.05"), v)
	})

	t.Run("returns not found for unmapped URL", func(t *testing.T) {
		t.Parallel()

		_, err := store.FindOwner(ctx, "https://wiki.alkit.se/wice1105/index.php/Nowhere")

		assert.Equal(t, wikimap.ENOTFOUND, wikimap.ErrorCode(err))
	})
}

func TestMapStore_Runs(t *testing.T) {
	t.Parallel()

	t.Run("lists runs newest first with counts", func(t *testing.T) {
		t.Parallel()

		store := sqlite.NewMapStore(setupTestDB(t))
		store.Now = clock()
		ctx := context.Background()

		require.NoError(t, store.SaveMap(ctx, sampleMap()))
		require.NoError(t, store.SaveMap(ctx, wikimap.VersionMap{"11.05": {{URL: home1105}}}))

		runs, err := store.Runs(ctx, 0, 0)

		require.NoError(t, err)
		require.Len(t, runs, 2)
		assert.Equal(t, 1, runs[0].Versions)
		assert.Equal(t, 1, runs[0].Links)
		assert.Equal(t, 2, runs[1].Versions)
		assert.Equal(t, 3, runs[1].Links)
		assert.True(t, runs[0].CreatedAt.After(runs[1].CreatedAt))
		assert.NotEqual(t, runs[0].ID, runs[1].ID)
	})

	t.Run("paginates", func(t *testing.T) {
		t.Parallel()

		store := sqlite.NewMapStore(setupTestDB(t))
		ctx := context.Background()
		for range 3 {
			require.NoError(t, store.SaveMap(ctx, sampleMap()))
		}

		page, err := store.Runs(ctx, 2, 0)
		require.NoError(t, err)
		assert.Len(t, page, 2)

		rest, err := store.Runs(ctx, 0, 2)
		require.NoError(t, err)
		assert.Len(t, rest, 1)
	})
}

func TestMapStore_PruneRuns(t *testing.T) {
	t.Parallel()

	t.Run("keeps the newest runs and cascades links", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		store := sqlite.NewMapStore(db)
		ctx := context.Background()
		require.NoError(t, store.SaveMap(ctx, sampleMap()))
		latest := wikimap.VersionMap{"11.05": {{URL: home1105, Title: wikimap.HomeTitle}}}
		require.NoError(t, store.SaveMap(ctx, latest))

		removed, err := store.PruneRuns(ctx, 1)

		require.NoError(t, err)
		assert.Equal(t, 1, removed)
		var links int
		require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM links").Scan(&links))
		assert.Equal(t, 1, links)
		got, err := store.LoadMap(ctx)
		require.NoError(t, err)
		assert.Equal(t, latest, got)
	})

	t.Run("rejects negative keep", func(t *testing.T) {
		t.Parallel()

		_, err := sqlite.NewMapStore(setupTestDB(t)).PruneRuns(context.Background(), -1)

		assert.Equal(t, wikimap.EINVALID, wikimap.ErrorCode(err))
	})
}
