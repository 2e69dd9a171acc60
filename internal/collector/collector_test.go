package collector_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/tikspyder/internal/collector"
	"github.com/jonesrussell/tikspyder/internal/database"
	"github.com/jonesrussell/tikspyder/internal/logger"
	"github.com/jonesrussell/tikspyder/internal/query"
	"github.com/jonesrussell/tikspyder/internal/rawdata"
	"github.com/jonesrussell/tikspyder/internal/serpapi"
	"github.com/jonesrussell/tikspyder/internal/testhelpers"
)

func newCollector(t *testing.T, cfg collector.Config, handler http.Handler) (*collector.Collector, *database.Store, string) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	serp := serpapi.NewClient(serpapi.ClientConfig{
		APIKey:   "test-key",
		Endpoint: server.URL,
	})

	store := testhelpers.NewStore(t, database.RelatedDedupe)
	outputDir := t.TempDir()
	cfg.OutputDir = outputDir

	col := collector.New(cfg, serp, nil, store, rawdata.NewWriter(outputDir), logger.NewNop())
	return col, store, outputDir
}

func TestRunCollectsAndExports(t *testing.T) {
	// The organic search returns three hits of which two are video links; the
	// image search returns nothing.
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res := serpapi.SearchResponse{}
		if r.URL.Query().Get("tbm") != "isch" {
			res.OrganicResults = []serpapi.OrganicResult{
				{
					Link:    "https://www.tiktok.com/@exampleuser/video/111",
					Title:   "first",
					Snippet: "10K Likes, 50 Comments",
				},
				{
					Link:  "https://www.tiktok.com/@exampleuser/video/222",
					Title: "second",
				},
				{
					Link:  "https://www.tiktok.com/@exampleuser",
					Title: "profile page, filtered out",
				},
			}
		}
		require.NoError(t, json.NewEncoder(w).Encode(res))
	})

	col, store, outputDir := newCollector(t, collector.Config{
		Query: query.Params{User: "exampleuser"},
		Depth: 3,
	}, handler)

	summary, err := col.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "site:tiktok.com/@exampleuser/*", summary.Query)
	assert.Equal(t, 2, summary.SearchResults)
	assert.Equal(t, 0, summary.ImageResults)
	assert.Equal(t, 0, summary.RelatedContent)
	assert.Equal(t, []string{
		"https://www.tiktok.com/@exampleuser/video/111",
		"https://www.tiktok.com/@exampleuser/video/222",
	}, summary.CandidateLinks)

	links, err := store.ListAllLinks(context.Background())
	require.NoError(t, err)
	assert.Len(t, links, 2)

	// The export stage ran: every table has its CSV file.
	_, err = os.Stat(filepath.Join(outputDir, "query_search_results.csv"))
	assert.NoError(t, err)

	// Raw snapshots were captured for both search stages.
	entries, err := os.ReadDir(filepath.Join(outputDir, "raw_data"))
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}

func TestRunFollowsRelatedContent(t *testing.T) {
	var relatedCalls int
	var server *httptest.Server
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res := serpapi.SearchResponse{}
		switch {
		case r.URL.Query().Get("related") == "1":
			relatedCalls++
			res.RelatedContent = []serpapi.RelatedItem{
				{Link: "https://www.tiktok.com/@exampleuser/video/333", Title: "related"},
			}
		case r.URL.Query().Get("tbm") == "isch":
			res.ImagesResults = []serpapi.ImageItem{
				{
					Link:               "https://www.tiktok.com/@exampleuser/video/111",
					RelatedContentLink: server.URL + "?related=1",
				},
				{
					Link:               "https://www.tiktok.com/@exampleuser/video/222",
					RelatedContentLink: server.URL + "?related=1&x=2",
				},
			}
		}
		require.NoError(t, json.NewEncoder(w).Encode(res))
	})
	server = httptest.NewServer(handler)
	t.Cleanup(server.Close)

	serp := serpapi.NewClient(serpapi.ClientConfig{APIKey: "test-key", Endpoint: server.URL})
	store := testhelpers.NewStore(t, database.RelatedDedupe)
	outputDir := t.TempDir()

	col := collector.New(collector.Config{
		Query:     query.Params{User: "exampleuser"},
		Depth:     1,
		OutputDir: outputDir,
	}, serp, nil, store, rawdata.NewWriter(outputDir), logger.NewNop())

	summary, err := col.Run(context.Background())
	require.NoError(t, err)

	// Depth 1 follows only the first related URL even though two were found.
	assert.Equal(t, 1, relatedCalls)
	assert.Equal(t, 2, summary.ImageResults)
	assert.Equal(t, 1, summary.RelatedContent)
}

func TestRunContinuesPastFailedStages(t *testing.T) {
	// Every search call fails; the run still finishes and exports.
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	})

	col, _, outputDir := newCollector(t, collector.Config{
		Query: query.Params{Term: "anything"},
		Depth: 3,
	}, handler)

	summary, err := col.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.SearchResults)
	assert.Empty(t, summary.CandidateLinks)

	_, err = os.Stat(filepath.Join(outputDir, "query_search_results.csv"))
	assert.NoError(t, err)
}

func TestRunAbortsOnCanceledContext(t *testing.T) {
	col, _, _ := newCollector(t, collector.Config{
		Query: query.Params{Term: "anything"},
	}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(serpapi.SearchResponse{}))
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := col.Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunRejectsMalformedScrapeDates(t *testing.T) {
	// Malformed scrape date bounds are fatal before any network call.
	col, _, _ := newCollector(t, collector.Config{
		Query:          query.Params{User: "exampleuser"},
		Scrape:         true,
		OldestPostDate: "2024/01/01",
	}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for a malformed scrape date")
	}))

	_, err := col.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oldest-post-date")
}

func TestRunRejectsInvalidQuery(t *testing.T) {
	col, _, _ := newCollector(t, collector.Config{}, http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected for an invalid query")
		}))

	_, err := col.Run(context.Background())
	assert.ErrorIs(t, err, query.ErrNoTarget)
}
