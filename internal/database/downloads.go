package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonesrussell/tikspyder/internal/logger"
	"github.com/jonesrussell/tikspyder/internal/normalize"
)

// MarkDownloaded records that the media behind link has been materialized
// locally. The download ledger is the single source of truth for download
// state; the downloader is its only writer.
func (s *Store) MarkDownloaded(ctx context.Context, link string) error {
	_, _, postID, err := normalize.AuthorPostID(link)
	if err != nil {
		return fmt.Errorf("mark downloaded: %w", err)
	}

	const insert = `
		INSERT INTO downloads (post_id, link)
		VALUES (?, ?)
		ON CONFLICT (post_id) DO UPDATE SET
			link = excluded.link,
			downloaded_at = CURRENT_TIMESTAMP`
	if _, err := s.db.ExecContext(ctx, insert, postID, link); err != nil {
		return fmt.Errorf("mark downloaded %s: %w", postID, err)
	}

	return nil
}

// SyncDownloadsDir imports a legacy downloaded-media directory into the
// ledger: every file basename (extension stripped) becomes a downloaded post
// id. Returns the number of newly recorded ids. A missing directory is not
// an error; there is simply nothing to import.
func (s *Store) SyncDownloadsDir(ctx context.Context, dir string) (int, error) {
	ids, err := scanDownloadsDir(dir)
	if err != nil {
		return 0, err
	}

	var added int
	for _, id := range ids {
		res, execErr := s.db.ExecContext(ctx,
			"INSERT OR IGNORE INTO downloads (post_id) VALUES (?)", id)
		if execErr != nil {
			s.log.Error("record downloaded id",
				logger.String("post_id", id),
				logger.Error(execErr))
			continue
		}
		if n, raErr := res.RowsAffected(); raErr == nil {
			added += int(n)
		}
	}

	return added, nil
}

// downloadedPostIDs returns the set of post ids considered downloaded: every
// ledger row, plus file basenames under dir when dir is non-empty.
func (s *Store) downloadedPostIDs(ctx context.Context, dir string) (map[string]struct{}, error) {
	var ids []string
	if err := s.db.SelectContext(ctx, &ids, "SELECT post_id FROM downloads"); err != nil {
		return nil, fmt.Errorf("list downloaded ids: %w", err)
	}

	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	if dir != "" {
		fromDir, err := scanDownloadsDir(dir)
		if err != nil {
			return nil, err
		}
		for _, id := range fromDir {
			set[id] = struct{}{}
		}
	}

	return set, nil
}

func scanDownloadsDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read downloads directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ids = append(ids, strings.TrimSuffix(name, filepath.Ext(name)))
	}

	return ids, nil
}
