package storage

import (
	"context"

	"realestate-compare/models"
)

// ReportWriter is satisfied by any backend that can persist one merged report run.
type ReportWriter interface {
	WriteReport(ctx context.Context, runID string, report *models.Table[models.Merged]) error
	Close() error
}
