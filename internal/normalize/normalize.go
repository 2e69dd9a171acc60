// Package normalize maps upstream response shapes onto the canonical record
// types. All functions are pure: no network, no storage, no logging. Batch
// functions skip malformed items and report them as per-item errors so one
// bad record never aborts a page.
package normalize

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/jonesrussell/tikspyder/internal/apify"
	"github.com/jonesrussell/tikspyder/internal/domain"
	"github.com/jonesrussell/tikspyder/internal/serpapi"
)

// videoLinkPattern accepts only per-video TikTok URLs, i.e.
// https://www.tiktok.com/@<handle>/video/<id>. Profile pages, tag pages and
// non-TikTok hosts are rejected.
var videoLinkPattern = regexp.MustCompile(
	`^https?://(?:[a-z0-9-]+\.)?tiktok\.com/@[^/]+/video/\d+`,
)

var (
	likesPattern    = regexp.MustCompile(`(?i)(\d+(?:[\d,.]*\d+)?(?:[KM])?) Likes`)
	commentsPattern = regexp.MustCompile(`(?i)(\d+(?:[\d,.]*\d+)?(?:[KM])?) Comments`)
)

// IsVideoLink reports whether link points at a single TikTok video.
func IsVideoLink(link string) bool {
	return videoLinkPattern.MatchString(link)
}

// AuthorPostID derives the author handle, the author's profile URL and the
// post id from a TikTok video link. The post id is the last path segment
// with any query string stripped.
func AuthorPostID(link string) (author, authorURL, postID string, err error) {
	u, err := url.Parse(link)
	if err != nil {
		return "", "", "", fmt.Errorf("parse link %q: %w", link, err)
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 2 || !strings.HasPrefix(segments[0], "@") {
		return "", "", "", fmt.Errorf("link %q has no author segment", link)
	}

	author = strings.TrimPrefix(segments[0], "@")
	authorURL = "https://www.tiktok.com/@" + author
	postID = segments[len(segments)-1]

	return author, authorURL, postID, nil
}

// LikesComments extracts like and comment counts from free snippet text,
// matching patterns such as "12.3K Likes" and "450 Comments". Absence of a
// match yields nil, not an error.
func LikesComments(text string) (likes, comments *string) {
	if m := likesPattern.FindStringSubmatch(text); m != nil {
		likes = &m[1]
	}
	if m := commentsPattern.FindStringSubmatch(text); m != nil {
		comments = &m[1]
	}
	return likes, comments
}

// SearchResults projects organic search hits onto SearchResult records.
// Items whose link is not a TikTok video are silently dropped (that is the
// acceptance filter, not an error); items that pass the filter but cannot be
// derived are reported in errs and skipped.
func SearchResults(items []serpapi.OrganicResult) (records []domain.SearchResult, errs []error) {
	for _, item := range items {
		if !IsVideoLink(item.Link) {
			continue
		}

		author, authorURL, postID, err := AuthorPostID(item.Link)
		if err != nil {
			errs = append(errs, fmt.Errorf("search result: %w", err))
			continue
		}

		likes, comments := LikesComments(item.Snippet)

		records = append(records, domain.SearchResult{
			Source:                  item.Source,
			Title:                   item.Title,
			Snippet:                 item.Snippet,
			Link:                    item.Link,
			Thumbnail:               item.Thumbnail,
			VideoLink:               item.VideoLink,
			SnippetHighlightedWords: strings.Join(item.SnippetHighlightedWords, ", "),
			DisplayedLink:           item.DisplayedLink,
			TitleSnippet:            strings.TrimSpace(item.Title + " " + item.Snippet),
			Likes:                   likes,
			Comments:                comments,
			Author:                  author,
			LinkToAuthor:            authorURL,
			PostID:                  postID,
		})
	}

	return records, errs
}

// ImageResults projects image hits onto ImageResult records, applying the
// same video-link acceptance filter and link derivation as SearchResults.
func ImageResults(items []serpapi.ImageItem) (records []domain.ImageResult, errs []error) {
	for _, item := range items {
		if !IsVideoLink(item.Link) {
			continue
		}

		author, authorURL, postID, err := AuthorPostID(item.Link)
		if err != nil {
			errs = append(errs, fmt.Errorf("image result: %w", err))
			continue
		}

		records = append(records, domain.ImageResult{
			Source:             item.Source,
			Title:              item.Title,
			Link:               item.Link,
			Thumbnail:          item.Thumbnail,
			Author:             author,
			LinkToAuthor:       authorURL,
			PostID:             postID,
			RelatedContentLink: item.RelatedContentLink,
		})
	}

	return records, errs
}

// RelatedItems projects a related_content container onto RelatedContent
// records. No filtering is applied at this tier.
func RelatedItems(items []serpapi.RelatedItem) []domain.RelatedContent {
	records := make([]domain.RelatedContent, 0, len(items))
	for _, item := range items {
		records = append(records, domain.RelatedContent{
			Source:    item.Source,
			Link:      item.Link,
			Thumbnail: item.Thumbnail,
			Title:     item.Title,
		})
	}
	return records
}

// RelatedFromImages projects an images_results container onto
// RelatedContent records, for related-content responses that use the image
// shape instead of related_content.
func RelatedFromImages(items []serpapi.ImageItem) []domain.RelatedContent {
	records := make([]domain.RelatedContent, 0, len(items))
	for _, item := range items {
		records = append(records, domain.RelatedContent{
			Source:    item.Source,
			Link:      item.Link,
			Thumbnail: item.Thumbnail,
			Title:     item.Title,
		})
	}
	return records
}

// ScraperVideos projects scraper dataset items onto ScraperVideo records.
// input records which query/profile/hashtag produced the run. Items missing
// the natural key (id + video URL) are reported and skipped.
func ScraperVideos(items []apify.Item, input string) (records []domain.ScraperVideo, errs []error) {
	for _, item := range items {
		if item.ID == "" || item.WebVideoURL == "" {
			errs = append(errs, fmt.Errorf("scraper item %q missing id or video url", item.ID))
			continue
		}

		hashtags := make([]string, 0, len(item.Hashtags))
		for _, h := range item.Hashtags {
			if h.Name != "" {
				hashtags = append(hashtags, h.Name)
			}
		}

		records = append(records, domain.ScraperVideo{
			ID:            item.ID,
			VideoURL:      item.WebVideoURL,
			Text:          item.Text,
			Language:      item.TextLanguage,
			CreateTime:    item.CreateTime,
			CreateTimeISO: item.CreateTimeISO,
			IsAd:          item.IsAd,

			AuthorID:         item.AuthorMeta.ID,
			AuthorName:       item.AuthorMeta.Name,
			AuthorProfileURL: item.AuthorMeta.ProfileURL,
			AuthorBioLink:    item.AuthorMeta.BioLink,
			AuthorSignature:  item.AuthorMeta.Signature,
			AuthorVerified:   item.AuthorMeta.Verified,
			AuthorAvatar:     item.AuthorMeta.Avatar,
			AuthorPrivate:    item.AuthorMeta.PrivateAccount,
			AuthorRegion:     item.AuthorMeta.Region,
			AuthorFollowers:  item.AuthorMeta.Fans,
			AuthorFollowing:  item.AuthorMeta.Following,
			AuthorFriends:    item.AuthorMeta.Friends,
			AuthorHearts:     item.AuthorMeta.Heart,
			AuthorVideos:     item.AuthorMeta.Video,

			MusicID:       item.MusicMeta.MusicID,
			MusicName:     item.MusicMeta.MusicName,
			MusicAuthor:   item.MusicMeta.MusicAuthor,
			MusicOriginal: item.MusicMeta.MusicOriginal,

			VideoDuration: item.VideoMeta.Duration,
			CoverURL:      item.VideoMeta.CoverURL,
			DownloadURL:   item.VideoMeta.DownloadAddr,

			DiggCount:    item.DiggCount,
			ShareCount:   item.ShareCount,
			PlayCount:    item.PlayCount,
			CollectCount: item.CollectCount,
			CommentCount: item.CommentCount,

			Hashtags:    strings.Join(hashtags, ", "),
			IsSlideshow: item.IsSlideshow,
			IsPinned:    item.IsPinned,
			IsSponsored: item.IsSponsored,
			Input:       input,
		})
	}

	return records, errs
}
