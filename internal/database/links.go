package database

import (
	"context"
	"fmt"
	"sort"

	"github.com/jonesrussell/tikspyder/internal/normalize"
)

// allLinksQuery is the deduplicated union of video links across every table.
const allLinksQuery = `
	SELECT link FROM query_search_results
	UNION
	SELECT link FROM images_results
	UNION
	SELECT link FROM related_content
	UNION
	SELECT video_url FROM apify_profile_videos
	UNION
	SELECT video_url FROM apify_hashtag_videos`

// candidateBaseQuery is the union used for download candidates; related
// content is folded in separately because it needs author scoping.
const candidateBaseQuery = `
	SELECT link FROM query_search_results
	UNION
	SELECT link FROM images_results
	UNION
	SELECT video_url FROM apify_profile_videos
	UNION
	SELECT video_url FROM apify_hashtag_videos`

// CandidateOptions scopes a ListCandidateLinks call.
type CandidateOptions struct {
	// IncludeRelated folds in related-content links whose author already
	// appears in the search or image results.
	IncludeRelated bool
	// DownloadsDir is a legacy downloaded-media directory whose file
	// basenames (sans extension) are treated as already-downloaded post ids,
	// in addition to the download ledger.
	DownloadsDir string
}

// ListAllLinks returns every video link known to the store, deduplicated,
// with no download-state filtering.
func (s *Store) ListAllLinks(ctx context.Context) ([]string, error) {
	var links []string
	if err := s.db.SelectContext(ctx, &links, allLinksQuery); err != nil {
		return nil, fmt.Errorf("list all links: %w", err)
	}
	sort.Strings(links)
	return links, nil
}

// ListCandidateLinks returns the links still awaiting download: the
// deduplicated union of collected links minus those recorded in the download
// ledger (or, when opts.DownloadsDir is set, present on disk).
func (s *Store) ListCandidateLinks(ctx context.Context, opts CandidateOptions) ([]string, error) {
	var links []string
	if err := s.db.SelectContext(ctx, &links, candidateBaseQuery); err != nil {
		return nil, fmt.Errorf("list candidate links: %w", err)
	}

	if opts.IncludeRelated {
		related, err := s.relatedLinksForKnownAuthors(ctx, links)
		if err != nil {
			return nil, err
		}
		links = append(links, related...)
	}

	downloaded, err := s.downloadedPostIDs(ctx, opts.DownloadsDir)
	if err != nil {
		return nil, err
	}

	candidates := make([]string, 0, len(links))
	for _, link := range links {
		if _, _, postID, derivErr := normalize.AuthorPostID(link); derivErr == nil {
			if _, ok := downloaded[postID]; ok {
				continue
			}
		}
		candidates = append(candidates, link)
	}

	sort.Strings(candidates)
	return candidates, nil
}

// relatedLinksForKnownAuthors returns related-content video links whose
// author already appears in the organic or image results, excluding links
// the base union already contains.
func (s *Store) relatedLinksForKnownAuthors(ctx context.Context, known []string) ([]string, error) {
	var authors []string
	const authorsQuery = `
		SELECT author FROM query_search_results
		UNION
		SELECT author FROM images_results`
	if err := s.db.SelectContext(ctx, &authors, authorsQuery); err != nil {
		return nil, fmt.Errorf("list known authors: %w", err)
	}

	authorSet := make(map[string]struct{}, len(authors))
	for _, a := range authors {
		authorSet[a] = struct{}{}
	}

	knownSet := make(map[string]struct{}, len(known))
	for _, l := range known {
		knownSet[l] = struct{}{}
	}

	var related []string
	if err := s.db.SelectContext(ctx, &related, "SELECT DISTINCT link FROM related_content"); err != nil {
		return nil, fmt.Errorf("list related links: %w", err)
	}

	var out []string
	for _, link := range related {
		if _, seen := knownSet[link]; seen {
			continue
		}
		if !normalize.IsVideoLink(link) {
			continue
		}
		author, _, _, err := normalize.AuthorPostID(link)
		if err != nil {
			continue
		}
		if _, ok := authorSet[author]; ok {
			out = append(out, link)
		}
	}

	return out, nil
}
