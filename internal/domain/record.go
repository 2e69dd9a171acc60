// Package domain provides the canonical record models shared by the
// collection pipeline and the persistence layer.
package domain

// Kind identifies one of the persisted record shapes. Every shape maps to
// exactly one table; the database package keys its insert/export machinery
// on this tag instead of duplicating per-table code.
type Kind string

const (
	// KindSearchResult is an organic Google search hit.
	KindSearchResult Kind = "search_result"
	// KindImageResult is a Google Images hit.
	KindImageResult Kind = "image_result"
	// KindRelatedContent is an item surfaced by a "see more" expansion.
	KindRelatedContent Kind = "related_content"
	// KindScraperProfile is a video item from a profile scrape run.
	KindScraperProfile Kind = "scraper_profile"
	// KindScraperHashtag is a video item from a hashtag scrape run.
	KindScraperHashtag Kind = "scraper_hashtag"
)

// Kinds lists every record kind in export order.
var Kinds = []Kind{
	KindSearchResult,
	KindImageResult,
	KindRelatedContent,
	KindScraperProfile,
	KindScraperHashtag,
}

// SearchResult represents an organic search hit that passed the TikTok
// video-link filter, with fields derived from the link and snippet.
type SearchResult struct {
	Source                  string  `db:"source"`
	Title                   string  `db:"title"`
	Snippet                 string  `db:"snippet"`
	Link                    string  `db:"link"`
	Thumbnail               string  `db:"thumbnail"`
	VideoLink               string  `db:"video_link"`
	SnippetHighlightedWords string  `db:"snippet_highlighted_words"`
	DisplayedLink           string  `db:"displayed_link"`
	TitleSnippet            string  `db:"title_snippet"`
	Likes                   *string `db:"likes"`
	Comments                *string `db:"comments"`
	Author                  string  `db:"author"`
	LinkToAuthor            string  `db:"link_to_author"`
	PostID                  string  `db:"post_id"`
}

// ImageResult represents a Google Images hit that passed the TikTok
// video-link filter. RelatedContentLink is the upstream "see more" pointer;
// it feeds the related-content expander and is not persisted.
type ImageResult struct {
	Source             string `db:"source"`
	Title              string `db:"title"`
	Link               string `db:"link"`
	Thumbnail          string `db:"thumbnail"`
	Author             string `db:"author"`
	LinkToAuthor       string `db:"link_to_author"`
	PostID             string `db:"post_id"`
	RelatedContentLink string `db:"-"`
}

// RelatedContent represents an item found while following "see more" links.
type RelatedContent struct {
	Source    string `db:"source"`
	Link      string `db:"link"`
	Thumbnail string `db:"thumbnail"`
	Title     string `db:"title"`
}

// ScraperVideo represents one video item returned by the external scraper,
// for either a profile or a hashtag run. Rows are keyed by the scraper's
// item id with a secondary uniqueness constraint on the video URL; re-scrapes
// replace the row so engagement counts stay fresh.
type ScraperVideo struct {
	ID            string `db:"id"`
	VideoURL      string `db:"video_url"`
	Text          string `db:"text"`
	Language      string `db:"language"`
	CreateTime    int64  `db:"create_time"`
	CreateTimeISO string `db:"create_time_iso"`
	IsAd          bool   `db:"is_ad"`

	AuthorID         string `db:"author_id"`
	AuthorName       string `db:"author_name"`
	AuthorProfileURL string `db:"author_profile_url"`
	AuthorBioLink    string `db:"author_bio_link"`
	AuthorSignature  string `db:"author_signature"`
	AuthorVerified   bool   `db:"author_verified"`
	AuthorAvatar     string `db:"author_avatar"`
	AuthorPrivate    bool   `db:"author_private"`
	AuthorRegion     string `db:"author_region"`
	AuthorFollowers  int64  `db:"author_followers"`
	AuthorFollowing  int64  `db:"author_following"`
	AuthorFriends    int64  `db:"author_friends"`
	AuthorHearts     int64  `db:"author_hearts"`
	AuthorVideos     int64  `db:"author_videos"`

	MusicID       string `db:"music_id"`
	MusicName     string `db:"music_name"`
	MusicAuthor   string `db:"music_author"`
	MusicOriginal bool   `db:"music_original"`

	VideoDuration int64  `db:"video_duration"`
	CoverURL      string `db:"cover_url"`
	DownloadURL   string `db:"download_url"`

	DiggCount    int64 `db:"digg_count"`
	ShareCount   int64 `db:"share_count"`
	PlayCount    int64 `db:"play_count"`
	CollectCount int64 `db:"collect_count"`
	CommentCount int64 `db:"comment_count"`

	Hashtags    string `db:"hashtags"`
	IsSlideshow bool   `db:"is_slideshow"`
	IsPinned    bool   `db:"is_pinned"`
	IsSponsored bool   `db:"is_sponsored"`
	Input       string `db:"input"`
}
