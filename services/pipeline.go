package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"realestate-compare/models"
	"realestate-compare/storage"
	"realestate-compare/utils"
)

// Pipeline builds the final dataset: load, merge, apply the crime hook, write.
type Pipeline struct {
	merger *Merger
	logger *utils.Logger
}

// NewPipeline creates a Pipeline with the given logger.
func NewPipeline(logger *utils.Logger) *Pipeline {
	return &Pipeline{merger: NewMerger(logger), logger: logger}
}

// CreateFinalDataset merges the listings and commute files into one table. The
// crime path and output path are optional; when outputPath is set the table is
// written there. Unreadable inputs degrade to empty tables and are logged; only
// a failed write is returned as an error.
func (p *Pipeline) CreateFinalDataset(listingsPath, commutePath, crimePath, outputPath string) (*models.Table[models.Merged], error) {
	listings := storage.LoadListings(listingsPath)
	p.logLoad("listings", listingsPath, listings.Status, listings.Reason, listings.Table.Len())

	commutes := storage.LoadCommutes(commutePath)
	p.logLoad("commute", commutePath, commutes.Status, commutes.Reason, commutes.Table.Len())

	var crime *models.Table[models.CrimeRecord]
	if res := storage.LoadCrime(crimePath); res != nil {
		p.logLoad("crime", crimePath, res.Status, res.Reason, res.Table.Len())
		crime = res.Table
	}

	merged := p.merger.MergeListingsAndCommutes(listings.Table, commutes.Table)
	final := p.merger.AddCrimeData(merged, crime)

	if outputPath == "" {
		return final, nil
	}
	if _, err := storage.WriteDataset(final, outputPath); err != nil {
		return nil, eris.Wrap(err, "pipeline: write final dataset")
	}
	p.logger.Info("[pipeline] Final dataset saved to %s (%d rows)", outputPath, final.Len())
	return final, nil
}

func (p *Pipeline) logLoad(source, path string, status storage.LoadStatus, reason error, rows int) {
	if status == storage.FallbackEmpty {
		p.logger.Warn("[pipeline] %s source %q unreadable, using empty table: %v", source, path, reason)
		return
	}
	p.logger.Info("[pipeline] Loaded %d %s rows from %s", rows, source, path)
}

// ExportReport stores the merged table through w under a fresh run id, which is returned.
func ExportReport(ctx context.Context, w storage.ReportWriter, report *models.Table[models.Merged]) (string, error) {
	runID := uuid.NewString()
	if err := w.WriteReport(ctx, runID, report); err != nil {
		return "", eris.Wrapf(err, "pipeline: export run %s", runID)
	}
	return runID, nil
}
