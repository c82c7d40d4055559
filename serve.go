package main

import (
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"realestate-compare/models"
	"realestate-compare/sample"
	"realestate-compare/services"
	"realestate-compare/web"
)

const searchResultsFile = "search_results.csv"

var (
	servePort    int
	serveBrowser bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the search web form",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		port := servePort
		if port <= 0 {
			port = cfg.ServerPort
		}
		mode, err := models.ParseTravelMode(cfg.CommuteMode)
		if err != nil {
			return err
		}

		collector := services.NewCollector(listingSource(serveBrowser), commuteClient(),
			cfg.RawDir(), filepath.Join(cfg.ProcessedDir(), searchResultsFile), logger,
			services.WithSampleFallback(sample.New(uint64(time.Now().UnixNano()))))

		srv := web.NewServer(collector, web.Defaults{
			Location:    cfg.SearchLocation,
			Destination: cfg.DefaultDestination,
			Mode:        mode,
			MaxListings: cfg.MaxListings,
		}, logger)

		logger.Info("Open your browser to http://localhost:%d", port)
		return srv.ListenAndServe(ctx, ":"+strconv.Itoa(port))
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (default from config)")
	serveCmd.Flags().BoolVar(&serveBrowser, "browser", true, "fall back to the headless browser when the API fails")
}
