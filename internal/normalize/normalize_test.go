package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/tikspyder/internal/apify"
	"github.com/jonesrussell/tikspyder/internal/serpapi"
)

func TestIsVideoLink(t *testing.T) {
	tests := []struct {
		name     string
		link     string
		expected bool
	}{
		{"canonical video link", "https://www.tiktok.com/@alice/video/1234567890", true},
		{"no subdomain", "https://tiktok.com/@alice/video/1234567890", true},
		{"regional subdomain", "https://m.tiktok.com/@alice/video/1234567890", true},
		{"http scheme", "http://www.tiktok.com/@alice/video/1234567890", true},
		{"query string", "https://www.tiktok.com/@alice/video/12345?lang=en", true},
		{"profile page", "https://www.tiktok.com/@alice", false},
		{"tag page", "https://www.tiktok.com/tag/dance", false},
		{"discover page", "https://www.tiktok.com/discover/something", false},
		{"other host", "https://www.youtube.com/@alice/video/12345", false},
		{"non-numeric id", "https://www.tiktok.com/@alice/video/abc", false},
		{"empty", "", false},
		{"garbage", "not a url at all", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsVideoLink(tt.link))
		})
	}
}

func TestAuthorPostID(t *testing.T) {
	tests := []struct {
		name          string
		link          string
		wantAuthor    string
		wantAuthorURL string
		wantPostID    string
		wantErr       bool
	}{
		{
			name:          "canonical link",
			link:          "https://www.tiktok.com/@alice/video/12345",
			wantAuthor:    "alice",
			wantAuthorURL: "https://www.tiktok.com/@alice",
			wantPostID:    "12345",
		},
		{
			name:          "query string stripped from post id",
			link:          "https://www.tiktok.com/@alice/video/12345?lang=en&is_copy_url=1",
			wantAuthor:    "alice",
			wantAuthorURL: "https://www.tiktok.com/@alice",
			wantPostID:    "12345",
		},
		{
			name:          "trailing slash",
			link:          "https://www.tiktok.com/@bob/video/67890/",
			wantAuthor:    "bob",
			wantAuthorURL: "https://www.tiktok.com/@bob",
			wantPostID:    "67890",
		},
		{
			name:    "no author segment",
			link:    "https://www.tiktok.com/tag/dance",
			wantErr: true,
		},
		{
			name:    "bare host",
			link:    "https://www.tiktok.com/",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			author, authorURL, postID, err := AuthorPostID(tt.link)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAuthor, author)
			assert.Equal(t, tt.wantAuthorURL, authorURL)
			assert.Equal(t, tt.wantPostID, postID)
		})
	}
}

func TestLikesComments(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		wantLikes    string
		wantComments string
	}{
		{
			name:         "both present",
			text:         "Watch this! 12.3K Likes, 450 Comments. TikTok video from alice.",
			wantLikes:    "12.3K",
			wantComments: "450",
		},
		{
			name:      "likes only with thousands separator",
			text:      "1,234 Likes on this video",
			wantLikes: "1,234",
		},
		{
			name:         "millions suffix lowercase label",
			text:         "2.5M likes, 10K comments",
			wantLikes:    "2.5M",
			wantComments: "10K",
		},
		{
			name: "no counts",
			text: "TikTok video from alice",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			likes, comments := LikesComments(tt.text)
			if tt.wantLikes == "" {
				assert.Nil(t, likes)
			} else {
				require.NotNil(t, likes)
				assert.Equal(t, tt.wantLikes, *likes)
			}
			if tt.wantComments == "" {
				assert.Nil(t, comments)
			} else {
				require.NotNil(t, comments)
				assert.Equal(t, tt.wantComments, *comments)
			}
		})
	}
}

func TestSearchResults(t *testing.T) {
	items := []serpapi.OrganicResult{
		{
			Title:   "alice dancing",
			Link:    "https://www.tiktok.com/@alice/video/111?lang=en",
			Snippet: "alice dancing. 5K Likes, 120 Comments.",
			Source:  "TikTok",
		},
		{
			Title: "profile page, filtered out",
			Link:  "https://www.tiktok.com/@alice",
		},
		{
			Title: "other host, filtered out",
			Link:  "https://www.youtube.com/watch?v=abc",
		},
	}

	records, errs := SearchResults(items)
	require.Empty(t, errs)
	require.Len(t, records, 1)

	record := records[0]
	assert.Equal(t, "alice", record.Author)
	assert.Equal(t, "https://www.tiktok.com/@alice", record.LinkToAuthor)
	assert.Equal(t, "111", record.PostID)
	assert.Equal(t, "alice dancing alice dancing. 5K Likes, 120 Comments.", record.TitleSnippet)
	require.NotNil(t, record.Likes)
	assert.Equal(t, "5K", *record.Likes)
	require.NotNil(t, record.Comments)
	assert.Equal(t, "120", *record.Comments)
}

func TestImageResults(t *testing.T) {
	items := []serpapi.ImageItem{
		{
			Title:              "a video still",
			Link:               "https://www.tiktok.com/@bob/video/222",
			RelatedContentLink: "https://serpapi.com/related?x=1",
		},
		{
			Title: "profile page, filtered out",
			Link:  "https://www.tiktok.com/@bob",
		},
	}

	records, errs := ImageResults(items)
	require.Empty(t, errs)
	require.Len(t, records, 1)
	assert.Equal(t, "bob", records[0].Author)
	assert.Equal(t, "222", records[0].PostID)
	assert.Equal(t, "https://serpapi.com/related?x=1", records[0].RelatedContentLink)
}

func TestScraperVideos(t *testing.T) {
	items := []apify.Item{
		{
			ID:          "7300000000000000001",
			WebVideoURL: "https://www.tiktok.com/@carol/video/7300000000000000001",
			Text:        "a post",
			AuthorMeta:  apify.AuthorMeta{Name: "carol", Fans: 1000},
			Hashtags:    []apify.Hashtag{{Name: "fyp"}, {Name: "dance"}, {Name: ""}},
			DiggCount:   42,
		},
		{
			// Missing id, skipped and reported.
			WebVideoURL: "https://www.tiktok.com/@carol/video/7300000000000000002",
		},
	}

	records, errs := ScraperVideos(items, "carol")
	require.Len(t, errs, 1)
	require.Len(t, records, 1)

	record := records[0]
	assert.Equal(t, "7300000000000000001", record.ID)
	assert.Equal(t, "carol", record.AuthorName)
	assert.Equal(t, int64(1000), record.AuthorFollowers)
	assert.Equal(t, "fyp, dance", record.Hashtags)
	assert.Equal(t, int64(42), record.DiggCount)
	assert.Equal(t, "carol", record.Input)
}
