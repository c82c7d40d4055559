package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"realestate-compare/models"
)

// WriteDataset writes the table to path as CSV: one header row, then one row per
// record, with no index column. Intermediate directories are created and an
// existing file is overwritten. The table is returned unchanged.
func WriteDataset[T models.Row](t *models.Table[T], path string) (*models.Table[T], error) {
	if t == nil {
		return nil, eris.New("csv: nil table")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, eris.Wrapf(err, "csv: create output dir %q", dir)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, eris.Wrapf(err, "csv: create file %q", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.Columns); err != nil {
		return nil, eris.Wrap(err, "csv: write header")
	}

	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, col := range t.Columns {
			record[i] = row.Field(col)
		}
		if err := w.Write(record); err != nil {
			return nil, eris.Wrap(err, "csv: write row")
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, eris.Wrap(err, "csv: flush")
	}
	if err := f.Close(); err != nil {
		return nil, eris.Wrapf(err, "csv: close %q", path)
	}
	return t, nil
}
