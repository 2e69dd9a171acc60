package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/tikspyder/internal/domain"
	"github.com/jonesrussell/tikspyder/internal/logger"
)

// RelatedPolicy controls duplicate handling for related-content rows across
// repeated "see more" traversals.
type RelatedPolicy string

const (
	// RelatedDedupe keeps one row per link (insert-or-ignore). Default.
	RelatedDedupe RelatedPolicy = "dedupe"
	// RelatedAppend preserves every traversal as its own row.
	RelatedAppend RelatedPolicy = "append"
)

// Store persists collected records. All writes commit per record: a failure
// on record N never rolls back records 1..N-1. Resumability over atomicity.
type Store struct {
	db            *sqlx.DB
	log           logger.Logger
	specs         map[domain.Kind]kindSpec
	relatedInsert string
	relatedUnique bool
}

// NewStore creates a Store over an open database.
func NewStore(db *sqlx.DB, log logger.Logger, relatedPolicy RelatedPolicy) *Store {
	relatedInsert := `INSERT INTO related_content (source, link, thumbnail, title)
		VALUES (:source, :link, :thumbnail, :title)`
	if relatedPolicy != RelatedAppend {
		relatedInsert = `INSERT OR IGNORE INTO related_content (source, link, thumbnail, title)
			VALUES (:source, :link, :thumbnail, :title)`
	}

	return &Store{
		db:            db,
		log:           log,
		specs:         specs(),
		relatedInsert: relatedInsert,
		relatedUnique: relatedPolicy != RelatedAppend,
	}
}

// CreateTables creates every record table, the download ledger and any
// policy-dependent indexes. Idempotent; call once at startup.
func (s *Store) CreateTables(ctx context.Context) error {
	for _, kind := range domain.Kinds {
		spec := s.specs[kind]
		if _, err := s.db.ExecContext(ctx, spec.create); err != nil {
			return fmt.Errorf("create table %s: %w", spec.table, err)
		}
	}

	if s.relatedUnique {
		const idx = `CREATE UNIQUE INDEX IF NOT EXISTS idx_related_content_link
			ON related_content (link)`
		if _, err := s.db.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("create related_content index: %w", err)
		}
	}

	const downloads = `
		CREATE TABLE IF NOT EXISTS downloads (
			post_id TEXT PRIMARY KEY,
			link TEXT,
			downloaded_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`
	if _, err := s.db.ExecContext(ctx, downloads); err != nil {
		return fmt.Errorf("create downloads table: %w", err)
	}

	return nil
}

// insertEach runs the insert statement once per record, committing each one
// independently. Failed records are logged and skipped; an error is returned
// only when nothing could be written at all (store unavailable).
func (s *Store) insertEach(ctx context.Context, table, insert string, records []any) (int, error) {
	var inserted int
	var lastErr error

	for _, record := range records {
		res, err := s.db.NamedExecContext(ctx, insert, record)
		if err != nil {
			lastErr = err
			s.log.Error("insert failed",
				logger.String("table", table),
				logger.Error(err))
			continue
		}
		if n, raErr := res.RowsAffected(); raErr == nil {
			inserted += int(n)
		}
	}

	if lastErr != nil && inserted == 0 {
		return 0, fmt.Errorf("insert into %s: %w", table, lastErr)
	}

	return inserted, nil
}

// InsertSearchResults writes organic search records (first write wins).
func (s *Store) InsertSearchResults(ctx context.Context, records []domain.SearchResult) (int, error) {
	spec := s.specs[domain.KindSearchResult]
	return s.insertEach(ctx, spec.table, spec.insert, asAny(records))
}

// InsertImageResults writes image records (first write wins).
func (s *Store) InsertImageResults(ctx context.Context, records []domain.ImageResult) (int, error) {
	spec := s.specs[domain.KindImageResult]
	return s.insertEach(ctx, spec.table, spec.insert, asAny(records))
}

// InsertRelatedContent writes related-content records using the configured
// duplicate policy.
func (s *Store) InsertRelatedContent(ctx context.Context, records []domain.RelatedContent) (int, error) {
	spec := s.specs[domain.KindRelatedContent]
	return s.insertEach(ctx, spec.table, s.relatedInsert, asAny(records))
}

// InsertScraperVideos writes scraper records into the profile or hashtag
// table (last write wins on the (id, video_url) key).
func (s *Store) InsertScraperVideos(ctx context.Context, kind domain.Kind, records []domain.ScraperVideo) (int, error) {
	if kind != domain.KindScraperProfile && kind != domain.KindScraperHashtag {
		return 0, fmt.Errorf("kind %q is not a scraper kind", kind)
	}
	spec := s.specs[kind]
	return s.insertEach(ctx, spec.table, spec.insert, asAny(records))
}

// Count returns the number of rows in the kind's table.
func (s *Store) Count(ctx context.Context, kind domain.Kind) (int, error) {
	spec, ok := s.specs[kind]
	if !ok {
		return 0, fmt.Errorf("unknown kind %q", kind)
	}

	var n int
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM "+spec.table); err != nil {
		return 0, fmt.Errorf("count %s: %w", spec.table, err)
	}
	return n, nil
}

func asAny[T any](records []T) []any {
	out := make([]any, len(records))
	for i := range records {
		out[i] = records[i]
	}
	return out
}
