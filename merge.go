package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"realestate-compare/sample"
	"realestate-compare/services"
	"realestate-compare/storage"
)

var (
	mergeListings string
	mergeCommute  string
	mergeCrime    string
	mergeOutput   string
	mergeInsights bool
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge existing listings and commute CSVs into the final dataset",
	Long: `Joins the listings CSV with the commute CSV on the normalised address.
Unreadable inputs are replaced by empty tables with the expected columns, so the
merge always produces a dataset.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		listings := firstSet(mergeListings, filepath.Join(cfg.RawDir(), services.ListingsFile))
		commutes := firstSet(mergeCommute, filepath.Join(cfg.RawDir(), services.CommuteFile))
		output := firstSet(mergeOutput, cfg.DefaultOutputPath())

		report, err := services.NewPipeline(logger).CreateFinalDataset(listings, commutes, mergeCrime, output)
		if err != nil {
			return err
		}

		if mergeInsights {
			insights := services.NewInsightService(logger)
			insights.Print(os.Stdout, insights.Generate(report))
		}
		fmt.Printf("Merged %d listings → %s\n", report.Len(), output)
		return nil
	},
}

var (
	commuteListings string
	commuteOutput   string
	commuteDest     string
	commuteMode     string
)

var commuteCmd = &cobra.Command{
	Use:   "commute",
	Short: "Estimate commutes for the addresses in a listings CSV",
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := firstSet(commuteListings, filepath.Join(cfg.RawDir(), services.ListingsFile))
		loaded := storage.LoadListings(path)
		if loaded.Fallback() {
			logger.Warn("Listings %q unreadable: %v", path, loaded.Reason)
		}

		req, err := (&searchFlags{destination: commuteDest, mode: commuteMode}).request()
		if err != nil {
			return err
		}

		addresses := services.AddressesFrom(loaded.Table)
		if len(addresses) == 0 {
			logger.Warn("No addresses found in %s — using sample addresses", path)
			addresses = sample.Addresses
		}

		table := commuteClient().Collect(cmd.Context(), addresses, req.Destination, req.Mode)
		output := firstSet(commuteOutput, filepath.Join(cfg.RawDir(), services.CommuteFile))
		if _, err := storage.WriteDataset(table, output); err != nil {
			return err
		}
		fmt.Printf("Wrote %d commute estimates → %s\n", table.Len(), output)
		return nil
	},
}

func init() {
	f := mergeCmd.Flags()
	f.StringVar(&mergeListings, "listings", "", "listings CSV (default data/raw/realtor_data.csv)")
	f.StringVar(&mergeCommute, "commute", "", "commute CSV (default data/raw/commute_data.csv)")
	f.StringVar(&mergeCrime, "crime", "", "optional crime CSV")
	f.StringVar(&mergeOutput, "output", "", "merged dataset path")
	f.BoolVar(&mergeInsights, "insights", false, "print the insights report")

	c := commuteCmd.Flags()
	c.StringVar(&commuteListings, "listings", "", "listings CSV (default data/raw/realtor_data.csv)")
	c.StringVar(&commuteOutput, "output", "", "commute CSV (default data/raw/commute_data.csv)")
	c.StringVar(&commuteDest, "destination", "", "commute destination (default from config)")
	c.StringVar(&commuteMode, "mode", "", "commute mode (default from config)")
}
