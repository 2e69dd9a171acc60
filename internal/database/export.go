package database

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jonesrussell/tikspyder/internal/domain"
	"github.com/jonesrussell/tikspyder/internal/logger"
)

// ExportCSV dumps every record table to <dir>/<table>.csv, one file per
// table, header row included even when the table is empty. A failure on one
// table is logged and does not stop the remaining tables.
func (s *Store) ExportCSV(ctx context.Context, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}

	for _, kind := range domain.Kinds {
		spec := s.specs[kind]
		path := filepath.Join(dir, spec.table+".csv")
		if err := s.exportTable(ctx, spec.table, path); err != nil {
			s.log.Error("export table failed",
				logger.String("table", spec.table),
				logger.Error(err))
			continue
		}
		s.log.Debug("exported table",
			logger.String("table", spec.table),
			logger.String("path", path))
	}

	return nil
}

func (s *Store) exportTable(ctx context.Context, table, path string) error {
	rows, err := s.db.QueryxContext(ctx, "SELECT * FROM "+table)
	if err != nil {
		return fmt.Errorf("select %s: %w", table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("columns of %s: %w", table, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err = w.Write(columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for rows.Next() {
		values, sliceErr := rows.SliceScan()
		if sliceErr != nil {
			return fmt.Errorf("scan row of %s: %w", table, sliceErr)
		}

		record := make([]string, len(values))
		for i, v := range values {
			record[i] = cellString(v)
		}
		if err = w.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("iterate %s: %w", table, err)
	}

	w.Flush()
	if err = w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}

	return f.Close()
}

func cellString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(val)
	case string:
		return val
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprint(val)
	}
}
