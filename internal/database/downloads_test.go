package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkDownloaded(t *testing.T) {
	store, db := newTestStore(t, RelatedDedupe)
	ctx := context.Background()

	require.NoError(t, store.MarkDownloaded(ctx, "https://www.tiktok.com/@alice/video/100"))

	// Marking again refreshes the row instead of failing.
	require.NoError(t, store.MarkDownloaded(ctx, "https://www.tiktok.com/@alice/video/100?lang=en"))

	var count int
	require.NoError(t, db.GetContext(ctx, &count, "SELECT COUNT(*) FROM downloads"))
	assert.Equal(t, 1, count)

	var link string
	require.NoError(t, db.GetContext(ctx, &link,
		"SELECT link FROM downloads WHERE post_id = ?", "100"))
	assert.Equal(t, "https://www.tiktok.com/@alice/video/100?lang=en", link)
}

func TestMarkDownloadedRejectsNonVideoLink(t *testing.T) {
	store, _ := newTestStore(t, RelatedDedupe)

	err := store.MarkDownloaded(context.Background(), "https://www.tiktok.com/tag/dance")
	assert.Error(t, err)
}

func TestSyncDownloadsDir(t *testing.T) {
	store, _ := newTestStore(t, RelatedDedupe)
	ctx := context.Background()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "100.mp4"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "200.mp4"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "ignored-subdir"), 0o755))

	added, err := store.SyncDownloadsDir(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	// Re-importing the same directory adds nothing.
	added, err = store.SyncDownloadsDir(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, 0, added)
}

func TestSyncDownloadsDirMissingDir(t *testing.T) {
	store, _ := newTestStore(t, RelatedDedupe)

	added, err := store.SyncDownloadsDir(context.Background(), "/nonexistent/downloads")
	require.NoError(t, err)
	assert.Equal(t, 0, added)
}
