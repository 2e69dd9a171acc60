package database

import "github.com/jonesrussell/tikspyder/internal/domain"

// kindSpec describes how one record kind maps onto its table: the DDL, the
// insert statement with the kind's conflict policy, and the column holding
// the video link. The insert/export/link machinery is shared across kinds
// through this registry instead of being duplicated per table.
type kindSpec struct {
	table      string
	create     string
	insert     string
	linkColumn string
}

const searchResultColumns = `
	source, title, snippet, link, thumbnail, video_link,
	snippet_highlighted_words, displayed_link, title_snippet,
	likes, comments, author, link_to_author, post_id`

const searchResultValues = `
	:source, :title, :snippet, :link, :thumbnail, :video_link,
	:snippet_highlighted_words, :displayed_link, :title_snippet,
	:likes, :comments, :author, :link_to_author, :post_id`

const scraperColumns = `
	id, video_url, text, language, create_time, create_time_iso, is_ad,
	author_id, author_name, author_profile_url, author_bio_link,
	author_signature, author_verified, author_avatar, author_private,
	author_region, author_followers, author_following, author_friends,
	author_hearts, author_videos,
	music_id, music_name, music_author, music_original,
	video_duration, cover_url, download_url,
	digg_count, share_count, play_count, collect_count, comment_count,
	hashtags, is_slideshow, is_pinned, is_sponsored, input`

const scraperValues = `
	:id, :video_url, :text, :language, :create_time, :create_time_iso, :is_ad,
	:author_id, :author_name, :author_profile_url, :author_bio_link,
	:author_signature, :author_verified, :author_avatar, :author_private,
	:author_region, :author_followers, :author_following, :author_friends,
	:author_hearts, :author_videos,
	:music_id, :music_name, :music_author, :music_original,
	:video_duration, :cover_url, :download_url,
	:digg_count, :share_count, :play_count, :collect_count, :comment_count,
	:hashtags, :is_slideshow, :is_pinned, :is_sponsored, :input`

func scraperSpec(table string) kindSpec {
	return kindSpec{
		table:      table,
		linkColumn: "video_url",
		create: `
			CREATE TABLE IF NOT EXISTS ` + table + ` (
				id TEXT PRIMARY KEY,
				video_url TEXT UNIQUE,
				text TEXT,
				language TEXT,
				create_time INTEGER,
				create_time_iso TEXT,
				is_ad INTEGER,
				author_id TEXT,
				author_name TEXT,
				author_profile_url TEXT,
				author_bio_link TEXT,
				author_signature TEXT,
				author_verified INTEGER,
				author_avatar TEXT,
				author_private INTEGER,
				author_region TEXT,
				author_followers INTEGER,
				author_following INTEGER,
				author_friends INTEGER,
				author_hearts INTEGER,
				author_videos INTEGER,
				music_id TEXT,
				music_name TEXT,
				music_author TEXT,
				music_original INTEGER,
				video_duration INTEGER,
				cover_url TEXT,
				download_url TEXT,
				digg_count INTEGER,
				share_count INTEGER,
				play_count INTEGER,
				collect_count INTEGER,
				comment_count INTEGER,
				hashtags TEXT,
				is_slideshow INTEGER,
				is_pinned INTEGER,
				is_sponsored INTEGER,
				input TEXT
			)`,
		// Re-scrapes carry fresher engagement counts; last write wins.
		insert: `INSERT OR REPLACE INTO ` + table + ` (` +
			scraperColumns + `) VALUES (` + scraperValues + `)`,
	}
}

// specs returns the kind registry. The related-content insert policy is
// resolved by the store at construction time (dedupe vs append), so its
// insert statement is left to relatedInsert.
func specs() map[domain.Kind]kindSpec {
	return map[domain.Kind]kindSpec{
		domain.KindSearchResult: {
			table:      "query_search_results",
			linkColumn: "link",
			create: `
				CREATE TABLE IF NOT EXISTS query_search_results (
					record_id INTEGER PRIMARY KEY AUTOINCREMENT,
					source TEXT,
					title TEXT,
					snippet TEXT,
					link TEXT UNIQUE,
					thumbnail TEXT,
					video_link TEXT,
					snippet_highlighted_words TEXT,
					displayed_link TEXT,
					title_snippet TEXT,
					likes TEXT,
					comments TEXT,
					author TEXT,
					link_to_author TEXT,
					post_id TEXT UNIQUE
				)`,
			// First write wins: organic results are never refreshed upstream.
			insert: `INSERT OR IGNORE INTO query_search_results (` +
				searchResultColumns + `) VALUES (` + searchResultValues + `)`,
		},
		domain.KindImageResult: {
			table:      "images_results",
			linkColumn: "link",
			create: `
				CREATE TABLE IF NOT EXISTS images_results (
					record_id INTEGER PRIMARY KEY AUTOINCREMENT,
					source TEXT,
					title TEXT,
					link TEXT UNIQUE,
					thumbnail TEXT,
					author TEXT,
					link_to_author TEXT,
					post_id TEXT UNIQUE
				)`,
			insert: `INSERT OR IGNORE INTO images_results (
				source, title, link, thumbnail, author, link_to_author, post_id
			) VALUES (
				:source, :title, :link, :thumbnail, :author, :link_to_author, :post_id
			)`,
		},
		domain.KindRelatedContent: {
			table:      "related_content",
			linkColumn: "link",
			create: `
				CREATE TABLE IF NOT EXISTS related_content (
					record_id INTEGER PRIMARY KEY AUTOINCREMENT,
					source TEXT,
					link TEXT,
					thumbnail TEXT,
					title TEXT
				)`,
		},
		domain.KindScraperProfile: scraperSpec("apify_profile_videos"),
		domain.KindScraperHashtag: scraperSpec("apify_hashtag_videos"),
	}
}
