package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"realestate-compare/models"
	"realestate-compare/sample"
	"realestate-compare/services"
	"realestate-compare/storage"
)

var (
	runFlags     searchFlags
	runOutput    string
	runNoBrowser bool
	runSample    bool
	runSeed      uint64
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Scrape listings, estimate commutes and build the merged dataset",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		start := time.Now()

		req, err := runFlags.request()
		if err != nil {
			return err
		}

		output := firstSet(runOutput, cfg.DefaultOutputPath())
		logger.Info("=== Real estate comparison starting ===")
		logger.Info("Config — location: %q | destination: %q | mode: %s | max listings: %d",
			req.Location, req.Destination, req.Mode, req.MaxListings)

		var opts []services.CollectorOption
		if runSample {
			opts = append(opts, services.WithSampleFallback(sample.New(runSeed)))
		}
		collector := services.NewCollector(listingSource(!runNoBrowser), commuteClient(),
			cfg.RawDir(), output, logger, opts...)

		res, err := collector.Run(ctx, req)
		if err != nil {
			return err
		}

		report := res.Report
		if cfg.PostgresEnabled {
			report = exportToPostgres(cmd, report)
		}

		insights := services.NewInsightService(logger)
		insights.Print(os.Stdout, insights.Generate(report))

		fmt.Printf("  Done in %s. Listings → %s | Commutes → %s | Merged → %s\n\n",
			time.Since(start).Round(time.Second), res.ListingsPath, res.CommutePath, res.OutputPath)
		return nil
	},
}

// exportToPostgres stores the report and reads it back for the insights. Any
// database failure is logged and the in-memory report is used instead.
func exportToPostgres(cmd *cobra.Command, report *models.Table[models.Merged]) *models.Table[models.Merged] {
	ctx := cmd.Context()

	pw, err := storage.NewPostgresWriter(ctx, cfg.DSN())
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL: %v", err)
		return report
	}
	defer pw.Close() //nolint:errcheck

	runID, err := services.ExportReport(ctx, pw, report)
	if err != nil {
		logger.Error("PostgreSQL write failed: %v", err)
		return report
	}
	logger.Info("Merged report stored in PostgreSQL (run %s)", runID)

	rows, err := pw.FetchRun(ctx, runID)
	if err != nil {
		logger.Error("Failed to fetch run from DB for insights: %v", err)
		return report
	}
	return models.NewTable(report.Columns, rows)
}

func init() {
	runFlags.register(runCmd)
	f := runCmd.Flags()
	f.StringVar(&runOutput, "output", "", "merged dataset path (default data/processed/<output_filename>)")
	f.BoolVar(&runNoBrowser, "no-browser", false, "do not fall back to the headless browser scraper")
	f.BoolVar(&runSample, "sample", false, "use generated sample data when scraping returns nothing")
	f.Uint64Var(&runSeed, "seed", uint64(time.Now().UnixNano()), "sample data seed")
}
