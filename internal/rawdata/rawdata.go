// Package rawdata persists raw upstream payloads before normalization, so a
// run's source material can be re-examined or re-ingested later.
package rawdata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Result types used as snapshot subdirectories.
const (
	TypeSearchResult   = "search_result"
	TypeImageResult    = "image_result"
	TypeRelatedContent = "related_content"
	TypeScraperProfile = "apify_profile_data"
	TypeScraperHashtag = "apify_hashtag_data"
)

// Writer writes JSON snapshots under <root>/raw_data/<result_type>/.
type Writer struct {
	root string
}

// NewWriter creates a Writer rooted at the run's output directory.
func NewWriter(root string) *Writer {
	return &Writer{root: root}
}

// Save writes payload as an indented JSON file named
// <result_type>_<unix>_<suffix>.json, where suffix is the last group of a
// random UUID to keep same-second snapshots apart.
func (w *Writer) Save(resultType string, payload any) error {
	dir := filepath.Join(w.root, "raw_data", resultType)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	parts := strings.Split(uuid.NewString(), "-")
	name := fmt.Sprintf("%s_%d_%s.json", resultType, time.Now().Unix(), parts[len(parts)-1])

	if err := os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	return nil
}
