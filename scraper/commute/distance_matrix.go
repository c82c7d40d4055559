package commute

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"

	"realestate-compare/models"
	"realestate-compare/utils"
)

const distanceMatrixURL = "https://maps.googleapis.com/maps/api/distancematrix/json"

// ErrNoAPIKey is returned when no Google Maps key is configured.
var ErrNoAPIKey = eris.New("commute: google maps api key not configured")

// Client estimates commute times from origins to a fixed destination.
type Client interface {
	// Estimate queries one origin. A route the API cannot serve is an error.
	Estimate(ctx context.Context, origin, destination string, mode models.TravelMode) (models.Commute, error)
	// Collect estimates every address in order. Failed queries become "N/A" rows.
	Collect(ctx context.Context, addresses []string, destination string, mode models.TravelMode) *models.Table[models.Commute]
}

// Option configures the client.
type Option func(*client)

// WithAPIKey sets the Google Maps API key.
func WithAPIKey(key string) Option {
	return func(c *client) { c.apiKey = key }
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) { c.httpClient = hc }
}

// WithBaseURL points the client at another Distance Matrix endpoint.
func WithBaseURL(u string) Option {
	return func(c *client) { c.baseURL = u }
}

// WithDelay sets the minimum spacing between requests.
func WithDelay(d time.Duration) Option {
	return func(c *client) { c.throttle = utils.NewThrottle(d) }
}

// WithLogger sets the logger.
func WithLogger(l *utils.Logger) Option {
	return func(c *client) { c.logger = l }
}

type client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	throttle   *utils.Throttle
	logger     *utils.Logger
}

// NewClient creates a Distance Matrix client. Requests are spaced two seconds
// apart unless WithDelay says otherwise.
func NewClient(opts ...Option) Client {
	c := &client{
		baseURL:    distanceMatrixURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		throttle:   utils.NewThrottle(2 * time.Second),
		logger:     utils.NewNopLogger(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type matrixResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Rows         []struct {
		Elements []matrixElement `json:"elements"`
	} `json:"rows"`
}

type matrixElement struct {
	Status   string    `json:"status"`
	Duration textValue `json:"duration"`
	Distance textValue `json:"distance"`
}

type textValue struct {
	Text  string `json:"text"`
	Value int    `json:"value"`
}

func (c *client) Estimate(ctx context.Context, origin, destination string, mode models.TravelMode) (models.Commute, error) {
	if !mode.Valid() {
		return models.Commute{}, eris.Wrapf(models.ErrInvalidMode, "%q", mode)
	}
	if c.apiKey == "" {
		return models.Commute{}, ErrNoAPIKey
	}
	if err := c.throttle.Wait(ctx); err != nil {
		return models.Commute{}, eris.Wrap(err, "commute: rate limit")
	}

	params := url.Values{
		"origins":      {origin},
		"destinations": {destination},
		"mode":         {string(mode)},
		"key":          {c.apiKey},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return models.Commute{}, eris.Wrap(err, "commute: build request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.Commute{}, eris.Wrap(err, "commute: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return models.Commute{}, eris.Errorf("commute: distance matrix returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Commute{}, eris.Wrap(err, "commute: read body")
	}

	var mr matrixResponse
	if err := json.Unmarshal(body, &mr); err != nil {
		return models.Commute{}, eris.Wrap(err, "commute: parse response")
	}
	if mr.Status != "OK" {
		return models.Commute{}, eris.Errorf("commute: api status %s %s", mr.Status, mr.ErrorMessage)
	}
	if len(mr.Rows) == 0 || len(mr.Rows[0].Elements) == 0 {
		return models.Commute{}, eris.New("commute: empty matrix")
	}

	el := mr.Rows[0].Elements[0]
	if el.Status != "OK" {
		return models.Commute{}, eris.Errorf("commute: route status %s", el.Status)
	}

	return models.Commute{
		Address:            origin,
		CommuteTimeText:    el.Duration.Text,
		CommuteTimeSeconds: models.IntOf(el.Duration.Value),
		DistanceText:       el.Distance.Text,
		DistanceValue:      models.IntOf(el.Distance.Value),
		Mode:               mode,
	}, nil
}

func (c *client) Collect(ctx context.Context, addresses []string, destination string, mode models.TravelMode) *models.Table[models.Commute] {
	rows := make([]models.Commute, 0, len(addresses))
	failed := 0
	for i, addr := range addresses {
		est, err := c.Estimate(ctx, addr, destination, mode)
		if err != nil {
			c.logger.Warn("[commute] %d/%d %q: %v", i+1, len(addresses), addr, err)
			est = models.Unavailable(addr, mode)
			failed++
		}
		rows = append(rows, est)
	}
	c.logger.Info("[commute] Estimated %d addresses to %q by %s (%d unavailable)",
		len(addresses), destination, mode, failed)
	return models.NewTable(models.CommuteColumns, rows)
}
