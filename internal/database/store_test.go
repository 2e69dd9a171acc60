package database

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/tikspyder/internal/domain"
	"github.com/jonesrussell/tikspyder/internal/logger"
)

func newTestStore(t *testing.T, policy RelatedPolicy) (*Store, *sqlx.DB) {
	t.Helper()

	db, err := OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store := NewStore(db, logger.NewNop(), policy)
	require.NoError(t, store.CreateTables(context.Background()))

	return store, db
}

func searchResult(link, author, postID string) domain.SearchResult {
	return domain.SearchResult{
		Source:       "TikTok",
		Title:        "a video",
		Link:         link,
		Author:       author,
		LinkToAuthor: "https://www.tiktok.com/@" + author,
		PostID:       postID,
	}
}

func TestCreateTablesIdempotent(t *testing.T) {
	store, _ := newTestStore(t, RelatedDedupe)
	require.NoError(t, store.CreateTables(context.Background()))
}

func TestInsertSearchResultsIgnoresDuplicates(t *testing.T) {
	store, _ := newTestStore(t, RelatedDedupe)
	ctx := context.Background()

	records := []domain.SearchResult{
		searchResult("https://www.tiktok.com/@alice/video/1", "alice", "1"),
		searchResult("https://www.tiktok.com/@bob/video/2", "bob", "2"),
	}

	n, err := store.InsertSearchResults(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Re-running the same page is a no-op, not an error.
	n, err = store.InsertSearchResults(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	count, err := store.Count(ctx, domain.KindSearchResult)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestInsertScraperVideosReplacesOnConflict(t *testing.T) {
	store, db := newTestStore(t, RelatedDedupe)
	ctx := context.Background()

	record := domain.ScraperVideo{
		ID:        "item-1",
		VideoURL:  "https://www.tiktok.com/@alice/video/1",
		DiggCount: 10,
	}
	n, err := store.InsertScraperVideos(ctx, domain.KindScraperProfile, []domain.ScraperVideo{record})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// A re-scrape of the same item carries fresher counts and wins.
	record.DiggCount = 99
	_, err = store.InsertScraperVideos(ctx, domain.KindScraperProfile, []domain.ScraperVideo{record})
	require.NoError(t, err)

	count, err := store.Count(ctx, domain.KindScraperProfile)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	var digg int64
	require.NoError(t, db.GetContext(ctx, &digg,
		"SELECT digg_count FROM apify_profile_videos WHERE id = ?", "item-1"))
	assert.Equal(t, int64(99), digg)
}

func TestInsertScraperVideosRejectsNonScraperKind(t *testing.T) {
	store, _ := newTestStore(t, RelatedDedupe)

	_, err := store.InsertScraperVideos(context.Background(),
		domain.KindSearchResult, []domain.ScraperVideo{{ID: "x", VideoURL: "y"}})
	assert.Error(t, err)
}

func TestInsertRelatedContentPolicies(t *testing.T) {
	ctx := context.Background()
	records := []domain.RelatedContent{
		{Source: "TikTok", Link: "https://www.tiktok.com/@alice/video/1", Title: "one"},
		{Source: "TikTok", Link: "https://www.tiktok.com/@alice/video/1", Title: "one again"},
	}

	t.Run("dedupe keeps one row per link", func(t *testing.T) {
		store, _ := newTestStore(t, RelatedDedupe)

		n, err := store.InsertRelatedContent(ctx, records)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		count, err := store.Count(ctx, domain.KindRelatedContent)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("append preserves every traversal", func(t *testing.T) {
		store, _ := newTestStore(t, RelatedAppend)

		n, err := store.InsertRelatedContent(ctx, records)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		count, err := store.Count(ctx, domain.KindRelatedContent)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})
}

func TestCountUnknownKind(t *testing.T) {
	store, _ := newTestStore(t, RelatedDedupe)

	_, err := store.Count(context.Background(), domain.Kind("nope"))
	assert.Error(t, err)
}
