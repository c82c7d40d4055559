package main

import (
	"context"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"realestate-compare/config"
	"realestate-compare/models"
	"realestate-compare/scraper/commute"
	"realestate-compare/scraper/realtor"
	"realestate-compare/services"
	"realestate-compare/utils"
)

var (
	cfg    *config.Config
	logger *utils.Logger
)

var rootCmd = &cobra.Command{
	Use:   "realestate-compare",
	Short: "Compare Ottawa listings by price and commute time",
	Long: "Scrapes Realtor.ca listings, estimates commutes with the Google Distance Matrix API, " +
		"and merges both into one CSV dataset.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		l, err := utils.NewLoggerWithConfig(cfg.Log)
		if err != nil {
			return eris.Wrap(err, "init logger")
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	rootCmd.AddCommand(runCmd, mergeCmd, commuteCmd, serveCmd, crimeCmd, sampleCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// listingSource tries the Realtor.ca API first and falls back to the browser
// scraper when the API fails or returns nothing.
func listingSource(useBrowser bool) services.ListingSource {
	api := realtor.New(cfg, logger)
	browser := realtor.NewBrowser(cfg, logger)

	return services.ListingSourceFunc(func(ctx context.Context, req services.SearchRequest) ([]*models.RawListing, error) {
		filter := realtor.SearchFilter{
			PriceMin:    req.PriceMin,
			PriceMax:    req.PriceMax,
			BedroomsMin: req.MinBedrooms,
		}

		raw, err := api.Scrape(ctx, filter, req.MaxListings)
		if err == nil && len(raw) > 0 {
			return raw, nil
		}
		if err != nil {
			logger.Warn("[main] Realtor.ca API failed: %v", err)
		}
		if !useBrowser {
			return raw, err
		}

		logger.Info("[main] Falling back to browser scraping")
		return browser.Scrape(ctx, req.Location, filter, req.MaxListings)
	})
}

func commuteClient() commute.Client {
	return commute.NewClient(
		commute.WithAPIKey(cfg.GoogleMapsAPIKey),
		commute.WithDelay(time.Duration(cfg.ScrapeDelayMs)*time.Millisecond),
		commute.WithLogger(logger),
	)
}

// searchFlags are shared by run and serve defaults.
type searchFlags struct {
	location    string
	destination string
	mode        string
	maxListings int
	priceMin    int
	priceMax    int
	minBeds     int
	minBaths    int
}

func (f *searchFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.location, "location", "", "search location (default from config)")
	fl.StringVar(&f.destination, "destination", "", "commute destination (default from config)")
	fl.StringVar(&f.mode, "mode", "", "commute mode: driving, walking, transit or bicycling")
	fl.IntVar(&f.maxListings, "max-listings", 0, "maximum listings to collect (default from config)")
	fl.IntVar(&f.priceMin, "price-min", 0, "minimum price")
	fl.IntVar(&f.priceMax, "price-max", 0, "maximum price")
	fl.IntVar(&f.minBeds, "beds", 0, "minimum bedrooms")
	fl.IntVar(&f.minBaths, "baths", 0, "minimum bathrooms")
}

func (f *searchFlags) request() (services.SearchRequest, error) {
	req := services.SearchRequest{
		Location:    firstSet(f.location, cfg.SearchLocation),
		Destination: firstSet(f.destination, cfg.DefaultDestination),
		MaxListings: f.maxListings,
		PriceMin:    f.priceMin,
		PriceMax:    f.priceMax,
		MinBedrooms: f.minBeds,
		MinBaths:    f.minBaths,
	}
	if req.MaxListings <= 0 {
		req.MaxListings = cfg.MaxListings
	}

	mode, err := models.ParseTravelMode(firstSet(f.mode, cfg.CommuteMode))
	if err != nil {
		return req, err
	}
	req.Mode = mode
	return req, nil
}

func firstSet(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
