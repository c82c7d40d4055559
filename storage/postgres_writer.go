package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/rotisserie/eris"

	"realestate-compare/models"
)

// reportColumns are the property_report columns filled from each merged row, in
// insert order. run_id is prepended.
var reportColumns = []string{
	"address", "price", "bedrooms", "bathrooms", "square_feet", "year_built",
	"property_tax", "mls_number", "neighborhood",
	"commute_time_text", "commute_time_seconds", "distance_text", "distance_value", "mode",
}

// PostgresWriter stores merged reports in PostgreSQL, one run per uuid.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(ctx context.Context, dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: open")
	}

	for i := 0; i < 10; i++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		select {
		case <-ctx.Done():
			_ = db.Close()
			return nil, eris.Wrap(ctx.Err(), "postgres: ping")
		case <-time.After(2 * time.Second):
		}
	}
	if err != nil {
		_ = db.Close()
		return nil, eris.Wrap(err, "postgres: ping failed after retries")
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, eris.Wrap(err, "postgres: migrate")
	}
	return pw, nil
}

func (pw *PostgresWriter) migrate(ctx context.Context) error {
	_, err := pw.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS property_report (
			id                   SERIAL PRIMARY KEY,
			run_id               UUID        NOT NULL,
			address              TEXT        NOT NULL,
			price                INTEGER,
			bedrooms             INTEGER,
			bathrooms            INTEGER,
			square_feet          INTEGER,
			year_built           INTEGER,
			property_tax         INTEGER,
			mls_number           TEXT        NOT NULL DEFAULT '',
			neighborhood         TEXT        NOT NULL DEFAULT '',
			commute_time_text    TEXT,
			commute_time_seconds INTEGER,
			distance_text        TEXT,
			distance_value       INTEGER,
			mode                 TEXT,
			created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_property_report_run     ON property_report(run_id);
		CREATE INDEX IF NOT EXISTS idx_property_report_price   ON property_report(price);
		CREATE INDEX IF NOT EXISTS idx_property_report_commute ON property_report(commute_time_seconds);
	`)
	return err
}

// WriteReport batch-inserts every merged row under runID. Rows of earlier runs are kept.
func (pw *PostgresWriter) WriteReport(ctx context.Context, runID string, report *models.Table[models.Merged]) error {
	if report.Empty() {
		return nil
	}

	tx, err := pw.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "postgres: begin")
	}
	defer func() { _ = tx.Rollback() }()

	const batchSize = 50
	rows := report.Rows
	for i := 0; i < len(rows); i += batchSize {
		end := i + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		query, args := buildInsert(runID, rows[i:end])
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return eris.Wrapf(err, "postgres: insert batch at row %d", i)
		}
	}

	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "postgres: commit")
	}
	return nil
}

// buildInsert renders one multi-row INSERT with $n placeholders.
func buildInsert(runID string, batch []models.Merged) (string, []any) {
	width := len(reportColumns) + 1
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]any, 0, len(batch)*width)

	for idx, m := range batch {
		base := idx * width
		ph := make([]string, width)
		for j := range ph {
			ph[j] = fmt.Sprintf("$%d", base+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(ph, ",")+")")
		valueArgs = append(valueArgs, reportArgs(runID, m)...)
	}

	query := fmt.Sprintf("INSERT INTO property_report (run_id, %s) VALUES %s",
		strings.Join(reportColumns, ", "), strings.Join(valueStrings, ","))
	return query, valueArgs
}

func reportArgs(runID string, m models.Merged) []any {
	l := m.Listing
	var sqft *int
	if n, ok := l.SquareFeet.SquareFeet(); ok {
		sqft = &n
	}

	args := []any{
		runID, l.Address, l.Price.Ptr(), l.Bedrooms.Ptr(), l.Bathrooms.Ptr(), sqft,
		l.YearBuilt.Ptr(), l.PropertyTax.Ptr(), l.MLSNumber, l.Neighborhood,
	}
	if c := m.Commute; c != nil {
		return append(args, c.CommuteTimeText, c.CommuteTimeSeconds.Ptr(),
			c.DistanceText, c.DistanceValue.Ptr(), string(c.Mode))
	}
	return append(args, nil, nil, nil, nil, nil)
}

// FetchRun reads back the rows stored for one run, in insert order.
func (pw *PostgresWriter) FetchRun(ctx context.Context, runID string) ([]models.Merged, error) {
	rows, err := pw.db.QueryContext(ctx, `
		SELECT `+strings.Join(reportColumns, ", ")+`
		FROM property_report
		WHERE run_id = $1
		ORDER BY id
	`, runID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: fetch run")
	}
	defer rows.Close()

	var out []models.Merged
	for rows.Next() {
		var (
			l                                   models.Listing
			price, beds, baths, sqft, year, tax sql.NullInt64
			commuteText, distText, mode         sql.NullString
			commuteSecs, distValue              sql.NullInt64
		)
		if err := rows.Scan(
			&l.Address, &price, &beds, &baths, &sqft, &year, &tax, &l.MLSNumber, &l.Neighborhood,
			&commuteText, &commuteSecs, &distText, &distValue, &mode,
		); err != nil {
			return nil, eris.Wrap(err, "postgres: scan row")
		}
		l.Price = nullInt(price)
		l.Bedrooms = nullInt(beds)
		l.Bathrooms = nullInt(baths)
		l.YearBuilt = nullInt(year)
		l.PropertyTax = nullInt(tax)
		if sqft.Valid {
			l.SquareFeet = models.AreaOf(int(sqft.Int64))
		}

		var c *models.Commute
		if commuteText.Valid {
			c = &models.Commute{
				Address:            l.Address,
				CommuteTimeText:    commuteText.String,
				CommuteTimeSeconds: nullInt(commuteSecs),
				DistanceText:       distText.String,
				DistanceValue:      nullInt(distValue),
				Mode:               models.TravelMode(mode.String),
			}
		}
		out = append(out, models.NewMerged(l, c, commuteOwned))
	}
	return out, rows.Err()
}

// commuteOwned is the commute side of a row read back from property_report.
var commuteOwned = map[string]struct{}{
	models.ColCommuteTimeText:    {},
	models.ColCommuteTimeSeconds: {},
	models.ColDistanceText:       {},
	models.ColDistanceValue:      {},
	models.ColMode:               {},
}

func nullInt(n sql.NullInt64) models.NullInt {
	if !n.Valid {
		return models.NullInt{}
	}
	return models.IntOf(int(n.Int64))
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}
