package storage

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"

	"realestate-compare/models"
)

// Reasons a source degraded to an empty table.
var (
	ErrSourceMissing = eris.New("csv: source file does not exist")
	ErrSourceEmpty   = eris.New("csv: source file is empty")
	ErrSourceInvalid = eris.New("csv: source file is not valid tabular data")
)

// LoadStatus tells whether a table came from the file or from the fallback schema.
type LoadStatus int

const (
	Loaded LoadStatus = iota
	FallbackEmpty
)

func (s LoadStatus) String() string {
	if s == FallbackEmpty {
		return "fallback-empty"
	}
	return "loaded"
}

// LoadResult is the outcome of reading one source. Table is never nil.
type LoadResult[T any] struct {
	Table  *models.Table[T]
	Status LoadStatus
	// Reason is set when Status is FallbackEmpty.
	Reason error
}

// Fallback reports whether the source could not be read.
func (r *LoadResult[T]) Fallback() bool {
	return r.Status == FallbackEmpty
}

// LoadListings reads a listings CSV. Unreadable sources yield an empty table with
// models.ListingFallbackColumns.
func LoadListings(path string) *LoadResult[models.Listing] {
	return load(path, models.ListingFallbackColumns, func(header, rec []string) models.Listing {
		var l models.Listing
		for i, col := range header {
			l.SetField(col, cell(rec, i))
		}
		return l
	})
}

// LoadCommutes reads a commute CSV. Unreadable sources yield an empty table with
// models.CommuteColumns.
func LoadCommutes(path string) *LoadResult[models.Commute] {
	return load(path, models.CommuteColumns, func(header, rec []string) models.Commute {
		var c models.Commute
		for i, col := range header {
			c.SetField(col, cell(rec, i))
		}
		return c
	})
}

// LoadCrime reads the optional crime CSV. It returns nil when no path is given or
// the file does not exist; an unreadable file yields an empty table with no columns.
func LoadCrime(path string) *LoadResult[models.CrimeRecord] {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	return load(path, nil, func(header, rec []string) models.CrimeRecord {
		r := make(models.CrimeRecord, len(header))
		for i, col := range header {
			r[col] = cell(rec, i)
		}
		return r
	})
}

func load[T any](path string, fallback []string, decode func(header, rec []string) T) *LoadResult[T] {
	header, records, err := readCSV(path)
	if err != nil {
		return &LoadResult[T]{
			Table:  models.NewTable[T](fallback, nil),
			Status: FallbackEmpty,
			Reason: err,
		}
	}

	rows := make([]T, 0, len(records))
	for _, rec := range records {
		rows = append(rows, decode(header, rec))
	}
	return &LoadResult[T]{Table: models.NewTable(header, rows), Status: Loaded}
}

// readCSV returns the header and data records of a CSV file. Records shorter than
// the header are padded when decoded; longer ones make the file invalid.
func readCSV(path string) ([]string, [][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, eris.Wrapf(ErrSourceMissing, "%s", path)
		}
		return nil, nil, eris.Wrapf(err, "csv: read %s", path)
	}

	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil, eris.Wrapf(ErrSourceEmpty, "%s", path)
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, nil, eris.Wrapf(ErrSourceInvalid, "%s: header: %v", path, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, eris.Wrapf(ErrSourceInvalid, "%s: %v", path, err)
		}
		if len(rec) > len(header) {
			line, _ := r.FieldPos(0)
			return nil, nil, eris.Wrapf(ErrSourceInvalid,
				"%s: line %d has %d fields, header has %d", path, line, len(rec), len(header))
		}
		if isBlankRecord(rec) {
			continue
		}
		records = append(records, rec)
	}
	return header, records, nil
}

func cell(rec []string, i int) string {
	if i < len(rec) {
		return rec[i]
	}
	return ""
}

func isBlankRecord(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
