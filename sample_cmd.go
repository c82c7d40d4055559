package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"realestate-compare/sample"
	"realestate-compare/services"
	"realestate-compare/storage"
)

var (
	sampleListings int
	sampleCrime    int
	sampleSeed     uint64
	sampleDir      string
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Write generated listings, commute and crime CSVs for offline use",
	RunE: func(cmd *cobra.Command, _ []string) error {
		dir := firstSet(sampleDir, cfg.RawDir())
		g := sample.New(sampleSeed)

		listings := g.Listings(sampleListings)
		listingsPath := filepath.Join(dir, services.ListingsFile)
		if _, err := storage.WriteDataset(listings, listingsPath); err != nil {
			return err
		}

		commutes := g.Commutes(services.AddressesFrom(listings))
		commutePath := filepath.Join(dir, services.CommuteFile)
		if _, err := storage.WriteDataset(commutes, commutePath); err != nil {
			return err
		}

		crimePath := filepath.Join(dir, crimeFile)
		if _, err := storage.WriteDataset(g.Crime(sampleCrime), crimePath); err != nil {
			return err
		}

		logger.Info("Sample data written (seed %d)", sampleSeed)
		fmt.Printf("Listings → %s\nCommutes → %s\nCrime    → %s\n", listingsPath, commutePath, crimePath)
		return nil
	},
}

func init() {
	f := sampleCmd.Flags()
	f.IntVar(&sampleListings, "listings", 50, "number of listings")
	f.IntVar(&sampleCrime, "crime", 100, "number of crime incidents")
	f.Uint64Var(&sampleSeed, "seed", uint64(time.Now().UnixNano()), "generator seed")
	f.StringVar(&sampleDir, "dir", "", "output directory (default data/raw)")
}
