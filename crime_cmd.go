package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"realestate-compare/crime"
	"realestate-compare/storage"
)

const (
	crimeFile         = "crime_data.csv"
	crimeFetchTimeout = 2 * time.Minute
)

var (
	crimeLat    float64
	crimeLon    float64
	crimeRadius float64
	crimeYear   int
	crimeOutput string
)

var crimeCmd = &cobra.Command{
	Use:   "crime",
	Short: "Download the Ottawa crime feed, export it as CSV and summarise an area",
	RunE: func(cmd *cobra.Command, _ []string) error {
		client := crime.NewClient(cfg.CrimeFeedURL, crimeFetchTimeout, logger)
		cache := crime.NewCache(client)

		incidents, err := cache.Incidents(cmd.Context(), false)
		if err != nil {
			return err
		}

		output := firstSet(crimeOutput, filepath.Join(cfg.RawDir(), crimeFile))
		if _, err := storage.WriteDataset(crime.Table(incidents), output); err != nil {
			return err
		}
		fmt.Printf("Wrote %d incidents → %s\n", len(incidents), output)

		if crimeYear > 0 {
			fmt.Printf("Incidents reported in %d: %d\n", crimeYear, crime.CountByYear(incidents, crimeYear))
		}

		radius := crimeRadius
		if radius <= 0 {
			radius = cfg.CrimeRadiusKm
		}
		stats := crime.StatsByArea(incidents, crimeLat, crimeLon, radius)
		fmt.Printf("Within %.1f km of (%.4f, %.4f): %d incidents, %.2f per 1000 residents\n",
			radius, crimeLat, crimeLon, stats.TotalCrimes, stats.CrimeRate)

		types := make([]string, 0, len(stats.CrimeTypes))
		for t := range stats.CrimeTypes {
			types = append(types, t)
		}
		sort.Slice(types, func(i, j int) bool {
			return stats.CrimeTypes[types[i]] > stats.CrimeTypes[types[j]] ||
				(stats.CrimeTypes[types[i]] == stats.CrimeTypes[types[j]] && types[i] < types[j])
		})
		for _, t := range types {
			fmt.Printf("  %-30s %d\n", t, stats.CrimeTypes[t])
		}
		return nil
	},
}

func init() {
	f := crimeCmd.Flags()
	// Parliament Hill
	f.Float64Var(&crimeLat, "lat", 45.4236, "area centre latitude")
	f.Float64Var(&crimeLon, "lon", -75.7009, "area centre longitude")
	f.Float64Var(&crimeRadius, "radius", 0, "area radius in km (default from config)")
	f.IntVar(&crimeYear, "year", 0, "also count incidents reported in this year")
	f.StringVar(&crimeOutput, "output", "", "crime CSV path (default data/raw/crime_data.csv)")
}
