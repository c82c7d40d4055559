package services

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rotisserie/eris"

	"realestate-compare/models"
	"realestate-compare/sample"
	"realestate-compare/storage"
	"realestate-compare/utils"
)

// Raw source file names written under the raw data directory.
const (
	ListingsFile = "realtor_data.csv"
	CommuteFile  = "commute_data.csv"
)

// SearchRequest describes one collection run.
type SearchRequest struct {
	Location    string
	MaxListings int
	PriceMin    int
	PriceMax    int
	MinBedrooms int
	MinBaths    int
	Destination string
	Mode        models.TravelMode
}

// ListingSource fetches raw listings for a search.
type ListingSource interface {
	Listings(ctx context.Context, req SearchRequest) ([]*models.RawListing, error)
}

// ListingSourceFunc adapts a function to ListingSource.
type ListingSourceFunc func(ctx context.Context, req SearchRequest) ([]*models.RawListing, error)

func (f ListingSourceFunc) Listings(ctx context.Context, req SearchRequest) ([]*models.RawListing, error) {
	return f(ctx, req)
}

// CommuteCollector estimates commutes from each address to destination.
type CommuteCollector interface {
	Collect(ctx context.Context, addresses []string, destination string, mode models.TravelMode) *models.Table[models.Commute]
}

// CollectResult is the outcome of Collector.Run.
type CollectResult struct {
	Report       *models.Table[models.Merged]
	ListingsPath string
	CommutePath  string
	OutputPath   string
	UsedSample   bool
}

// Collector runs scrape, commute lookup and merge end to end, writing the raw
// source CSVs on the way. Runs are serialised because they share files.
type Collector struct {
	listings ListingSource
	commutes CommuteCollector
	cleaner  *Cleaner
	pipeline *Pipeline
	samples  *sample.Generator
	logger   *utils.Logger

	rawDir         string
	outputPath     string
	sampleFallback bool

	mu sync.Mutex
}

// CollectorOption configures a Collector.
type CollectorOption func(*Collector)

// WithSampleFallback substitutes generated listings and commutes when the
// listing source fails or returns nothing. Without it an empty scrape still
// looks up commutes for the built-in sample addresses.
func WithSampleFallback(g *sample.Generator) CollectorOption {
	return func(c *Collector) {
		c.samples = g
		c.sampleFallback = true
	}
}

// NewCollector creates a Collector writing raw files under rawDir and the merged
// dataset to outputPath.
func NewCollector(listings ListingSource, commutes CommuteCollector, rawDir, outputPath string,
	logger *utils.Logger, opts ...CollectorOption,
) *Collector {
	c := &Collector{
		listings:   listings,
		commutes:   commutes,
		cleaner:    NewCleaner(logger),
		pipeline:   NewPipeline(logger),
		logger:     logger,
		rawDir:     rawDir,
		outputPath: outputPath,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Run collects listings and commutes for req and merges them. Only file write
// failures are returned as errors; upstream failures degrade to fallbacks.
func (c *Collector) Run(ctx context.Context, req SearchRequest) (*CollectResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.logger.Info("[collector] Search — location=%q price=%d-%d beds>=%d baths>=%d commute to %q by %s",
		req.Location, req.PriceMin, req.PriceMax, req.MinBedrooms, req.MinBaths, req.Destination, req.Mode)

	res := &CollectResult{
		ListingsPath: filepath.Join(c.rawDir, ListingsFile),
		CommutePath:  filepath.Join(c.rawDir, CommuteFile),
		OutputPath:   c.outputPath,
	}

	listings := c.scrape(ctx, req)
	if listings.Empty() && c.sampleFallback {
		c.logger.Warn("[collector] No scraped listings — using sample data")
		listings = sample.FilterListings(c.samples.Listings(req.MaxListings),
			req.PriceMin, req.PriceMax, req.MinBedrooms, req.MinBaths)
		c.logger.Info("[collector] %d sample listings after filtering", listings.Len())
		res.UsedSample = true
	}
	if _, err := storage.WriteDataset(listings, res.ListingsPath); err != nil {
		return nil, eris.Wrap(err, "collector: write listings")
	}

	commutes := c.commuteTable(ctx, req, listings, res.UsedSample)
	if _, err := storage.WriteDataset(commutes, res.CommutePath); err != nil {
		return nil, eris.Wrap(err, "collector: write commutes")
	}

	report, err := c.pipeline.CreateFinalDataset(res.ListingsPath, res.CommutePath, "", c.outputPath)
	if err != nil {
		return nil, err
	}
	res.Report = report
	return res, nil
}

func (c *Collector) scrape(ctx context.Context, req SearchRequest) *models.Table[models.Listing] {
	empty := models.NewTable[models.Listing](models.ListingColumns, nil)
	if c.listings == nil {
		return empty
	}

	raw, err := c.listings.Listings(ctx, req)
	if err != nil {
		c.logger.Error("[collector] Listing scrape failed: %v", err)
		return empty
	}
	cleaned := c.cleaner.Clean(raw)
	return sample.FilterListings(models.NewTable(models.ListingColumns, cleaned),
		req.PriceMin, req.PriceMax, req.MinBedrooms, req.MinBaths)
}

func (c *Collector) commuteTable(ctx context.Context, req SearchRequest, listings *models.Table[models.Listing], usedSample bool) *models.Table[models.Commute] {
	addresses := AddressesFrom(listings)
	if len(addresses) == 0 {
		if c.sampleFallback {
			return models.NewTable[models.Commute](models.CommuteColumns, nil)
		}
		c.logger.Warn("[collector] No listing addresses — using %d sample addresses", len(sample.Addresses))
		addresses = sample.Addresses
	}

	if usedSample || c.commutes == nil {
		if c.samples == nil {
			c.samples = sample.New(1)
		}
		c.logger.Info("[collector] Using sample commute data for %d addresses", len(addresses))
		return c.samples.Commutes(addresses)
	}
	return c.commutes.Collect(ctx, addresses, req.Destination, req.Mode)
}

// AddressesFrom returns the non-blank addresses of a listings table. When the
// table has no address column, the first column whose name contains "addr" is
// used instead.
func AddressesFrom(t *models.Table[models.Listing]) []string {
	if t.Empty() {
		return nil
	}

	column := models.ColAddress
	if !t.HasColumn(column) {
		column = ""
		for _, c := range t.Columns {
			if strings.Contains(strings.ToLower(c), "addr") {
				column = c
				break
			}
		}
		if column == "" {
			return nil
		}
	}

	var out []string
	for _, l := range t.Rows {
		if a := strings.TrimSpace(l.Field(column)); a != "" {
			out = append(out, a)
		}
	}
	return out
}
