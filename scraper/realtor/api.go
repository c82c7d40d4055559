package realtor

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"realestate-compare/config"
	"realestate-compare/models"
	"realestate-compare/utils"
)

const (
	apiBaseURL = "https://api2.realtor.ca/Listing.svc"
	source     = "realtor.ca"
	userAgent  = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// ErrUnexpectedStatus is wrapped when the API answers with a non-200 status.
var ErrUnexpectedStatus = eris.New("realtor: unexpected status")

// Option configures the API scraper.
type Option func(*Scraper)

// WithBaseURL points the scraper at another Listing.svc root.
func WithBaseURL(u string) Option {
	return func(s *Scraper) { s.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *Scraper) { s.httpClient = hc }
}

// SearchFilter narrows a search. Zero values mean no filter.
type SearchFilter struct {
	PriceMin    int
	PriceMax    int
	BedroomsMin int
}

// Scraper pages through the Realtor.ca listing API.
type Scraper struct {
	cfg        *config.Config
	logger     *utils.Logger
	baseURL    string
	httpClient *http.Client
	throttle   *utils.Throttle
	retry      *utils.RetryConfig
}

// New creates a ready-to-use API Scraper.
func New(cfg *config.Config, logger *utils.Logger, opts ...Option) *Scraper {
	s := &Scraper{
		cfg:        cfg,
		logger:     logger,
		baseURL:    apiBaseURL,
		httpClient: &http.Client{Timeout: time.Duration(cfg.RequestTimeoutSecs) * time.Second},
		throttle:   utils.NewThrottle(time.Duration(cfg.ScrapeDelayMs) * time.Millisecond),
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// flexString accepts JSON strings and numbers; the API uses both for the same fields.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(b)
	return nil
}

type searchResponse struct {
	Results []Result `json:"Results"`
	Paging  struct {
		TotalRecords int `json:"TotalRecords"`
	} `json:"Paging"`
}

// Result is one listing summary from PropertySearch_Post.
type Result struct {
	ID        flexString `json:"Id"`
	MlsNumber flexString `json:"MlsNumber"`
	Building  struct {
		Bedrooms      flexString `json:"Bedrooms"`
		BathroomTotal flexString `json:"BathroomTotal"`
		SizeInterior  flexString `json:"SizeInterior"`
	} `json:"Building"`
	Property struct {
		Price         flexString `json:"Price"`
		MlsNumber     flexString `json:"MlsNumber"`
		Bedrooms      flexString `json:"Bedrooms"`
		BathroomTotal flexString `json:"BathroomTotal"`
		Address       struct {
			AddressText flexString `json:"AddressText"`
		} `json:"Address"`
	} `json:"Property"`
	Neighborhood flexString `json:"Neighbourhood"`
}

// PropertyDetails is the subset of a PropertyDetails record the report uses.
type PropertyDetails struct {
	PropertyDetails struct {
		Building struct {
			YearBuilt    flexString `json:"YearBuilt"`
			SizeInterior flexString `json:"SizeInterior"`
		} `json:"Building"`
		Taxes struct {
			Annual flexString `json:"Annual"`
			Amount flexString `json:"Amount"`
		} `json:"Taxes"`
	} `json:"PropertyDetails"`
}

// Scrape searches the configured bounding box and enriches up to limit results
// with their detail records. A limit <= 0 uses cfg.MaxListings.
func (s *Scraper) Scrape(ctx context.Context, filter SearchFilter, limit int) ([]*models.RawListing, error) {
	if limit <= 0 {
		limit = s.cfg.MaxListings
	}
	s.logger.Info("[realtor] Starting API scrape — box (%.2f,%.2f)-(%.2f,%.2f), limit %d",
		s.cfg.LatitudeMin, s.cfg.LongitudeMin, s.cfg.LatitudeMax, s.cfg.LongitudeMax, limit)

	results, err := s.Search(ctx, filter, limit)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	listings := make([]*models.RawListing, 0, len(results))
	for i, r := range results {
		raw := r.toRaw()

		mls := raw.MLSNumber
		if mls != "" && r.ID != "" {
			details, err := s.Details(ctx, mls, string(r.ID))
			if err != nil {
				if ctx.Err() != nil {
					return listings, eris.Wrap(ctx.Err(), "realtor: scrape cancelled")
				}
				s.logger.Warn("[realtor] Details for %s unavailable: %v", mls, err)
			} else {
				details.apply(raw)
			}
		}

		listings = append(listings, raw)
		s.logger.Debug("[realtor] %d/%d %s", i+1, len(results), raw.Address)
	}

	s.logger.Info("[realtor] Scrape complete — total raw listings: %d", len(listings))
	return listings, nil
}

// Search pages through PropertySearch_Post until the results run out, the last
// page is reached, or limit results are collected (limit <= 0 means no limit).
// A failure after the first page ends the search with what was collected.
func (s *Scraper) Search(ctx context.Context, filter SearchFilter, limit int) ([]Result, error) {
	perPage := s.cfg.RecordsPerPage
	if perPage <= 0 {
		perPage = 50
	}

	var all []Result
	for page := 1; ; page++ {
		var resp searchResponse
		err := s.retry.Do(ctx, "search-page-"+strconv.Itoa(page), func() error {
			resp = searchResponse{}
			return s.postJSON(ctx, "/PropertySearch_Post", s.searchForm(filter, page, perPage), &resp)
		})
		if err != nil {
			if page == 1 {
				return nil, eris.Wrap(err, "realtor: search")
			}
			s.logger.Error("[realtor] Page %d failed: %v", page, err)
			break
		}

		if len(resp.Results) == 0 {
			s.logger.Info("[realtor] Page %d returned 0 results — stopping", page)
			break
		}
		all = append(all, resp.Results...)
		s.logger.Info("[realtor] Page %d done — %d results so far of %d", page, len(all), resp.Paging.TotalRecords)

		if limit > 0 && len(all) >= limit {
			break
		}
		if page*perPage >= resp.Paging.TotalRecords {
			break
		}
	}
	return all, nil
}

// Details fetches the detail record of one listing.
func (s *Scraper) Details(ctx context.Context, mlsNumber, propertyID string) (*PropertyDetails, error) {
	params := url.Values{
		"CultureId":       {"1"},
		"ApplicationId":   {"1"},
		"ReferenceNumber": {mlsNumber},
		"PropertyID":      {propertyID},
	}

	var resp PropertyDetails
	err := s.retry.Do(ctx, "details-"+mlsNumber, func() error {
		resp = PropertyDetails{}
		return s.getJSON(ctx, "/PropertyDetails?"+params.Encode(), &resp)
	})
	if err != nil {
		return nil, eris.Wrapf(err, "realtor: details %s", mlsNumber)
	}
	return &resp, nil
}

func (s *Scraper) searchForm(filter SearchFilter, page, perPage int) url.Values {
	f := url.Values{
		"CultureId":            {"1"},
		"ApplicationId":        {"1"},
		"PropertySearchTypeId": {"1"},
		"LatitudeMin":          {formatCoord(s.cfg.LatitudeMin)},
		"LatitudeMax":          {formatCoord(s.cfg.LatitudeMax)},
		"LongitudeMin":         {formatCoord(s.cfg.LongitudeMin)},
		"LongitudeMax":         {formatCoord(s.cfg.LongitudeMax)},
		"PriceMin":             {strconv.Itoa(filter.PriceMin)},
		"PriceMax":             {strconv.Itoa(filter.PriceMax)},
		"RecordsPerPage":       {strconv.Itoa(perPage)},
		"CurrentPage":          {strconv.Itoa(page)},
		"ViewType":             {"List"},
		"Sort":                 {"6-D"},
	}
	if filter.BedroomsMin > 0 {
		f.Set("BedRange", strconv.Itoa(filter.BedroomsMin)+"-0")
	}
	return f
}

func (s *Scraper) postJSON(ctx context.Context, path string, form url.Values, out any) error {
	if err := s.throttle.Wait(ctx); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return eris.Wrap(err, "realtor: build request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	req.Header.Set("Origin", "https://www.realtor.ca")
	req.Header.Set("Referer", "https://www.realtor.ca/")
	return s.do(req, out)
}

func (s *Scraper) getJSON(ctx context.Context, path string, out any) error {
	if err := s.throttle.Wait(ctx); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return eris.Wrap(err, "realtor: build request")
	}
	return s.do(req, out)
}

func (s *Scraper) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return eris.Wrap(err, "realtor: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return eris.Wrapf(ErrUnexpectedStatus, "%s returned %d", req.URL.Path, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "realtor: read body")
	}
	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, "realtor: parse response")
	}
	return nil
}

func (r Result) toRaw() *models.RawListing {
	return &models.RawListing{
		Address:      string(r.Property.Address.AddressText),
		RawPrice:     string(r.Property.Price),
		Bedrooms:     firstNonEmpty(r.Building.Bedrooms, r.Property.Bedrooms),
		Bathrooms:    firstNonEmpty(r.Building.BathroomTotal, r.Property.BathroomTotal),
		SizeInterior: string(r.Building.SizeInterior),
		MLSNumber:    firstNonEmpty(r.MlsNumber, r.Property.MlsNumber),
		Neighborhood: string(r.Neighborhood),
		Source:       source,
		ScrapedAt:    time.Now(),
	}
}

func (d *PropertyDetails) apply(raw *models.RawListing) {
	b := d.PropertyDetails.Building
	raw.YearBuilt = string(b.YearBuilt)
	if b.SizeInterior != "" {
		raw.SizeInterior = string(b.SizeInterior)
	}
	raw.RawTax = firstNonEmpty(d.PropertyDetails.Taxes.Annual, d.PropertyDetails.Taxes.Amount)
}

func firstNonEmpty(vals ...flexString) string {
	for _, v := range vals {
		if s := strings.TrimSpace(string(v)); s != "" {
			return s
		}
	}
	return ""
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
