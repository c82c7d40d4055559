// Package crime reads the City of Ottawa criminal offences feed and summarises
// incidents around a location.
package crime

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"realestate-compare/utils"
)

// Incident is one reported offence. Point is false when the feature had no
// usable point geometry; such incidents still count towards yearly totals.
type Incident struct {
	ID         string
	Lat        float64
	Lon        float64
	Point      bool
	Properties map[string]any
}

// Client downloads the offences GeoJSON feed.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *utils.Logger
}

// NewClient creates a Client for the feed at url.
func NewClient(url string, timeout time.Duration, logger *utils.Logger) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Fetch downloads and decodes every incident in the feed.
func (c *Client) Fetch(ctx context.Context) ([]Incident, error) {
	c.logger.Info("[crime] Fetching crime data from %s", c.url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, eris.Wrap(err, "crime: build request")
	}
	req.Header.Set("Accept", "application/geo+json, application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "crime: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("crime: feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "crime: read body")
	}

	incidents, err := Decode(body)
	if err != nil {
		return nil, err
	}
	c.logger.Info("[crime] Retrieved %d crime incidents", len(incidents))
	return incidents, nil
}

// Decode parses a GeoJSON FeatureCollection of offences.
func Decode(data []byte) ([]Incident, error) {
	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrap(err, "crime: decode geojson")
	}

	incidents := make([]Incident, 0, len(fc.Features))
	for _, f := range fc.Features {
		if f == nil {
			continue
		}
		inc := Incident{ID: f.ID, Properties: f.Properties}
		if inc.Properties == nil {
			inc.Properties = map[string]any{}
		}
		if p, ok := f.Geometry.(*geom.Point); ok && p != nil && !p.Empty() {
			inc.Lon, inc.Lat, inc.Point = p.X(), p.Y(), true
		}
		incidents = append(incidents, inc)
	}
	return incidents, nil
}
