package crime

import (
	"context"
	"sync"
	"time"
)

// Fetcher is anything that can download the full incident list.
type Fetcher interface {
	Fetch(ctx context.Context) ([]Incident, error)
}

// Cache holds the last successful download. It is owned by its caller; nothing
// is cached at package level.
type Cache struct {
	fetcher Fetcher

	mu        sync.Mutex
	incidents []Incident
	fetchedAt time.Time
	loaded    bool
}

// NewCache creates an empty cache in front of f.
func NewCache(f Fetcher) *Cache {
	return &Cache{fetcher: f}
}

// Incidents returns the cached incidents, downloading them on first use or when
// forceRefresh is set. A failed download leaves the previous contents in place.
func (c *Cache) Incidents(ctx context.Context, forceRefresh bool) ([]Incident, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded && !forceRefresh {
		return c.incidents, nil
	}

	incidents, err := c.fetcher.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	c.incidents = incidents
	c.fetchedAt = time.Now()
	c.loaded = true
	return c.incidents, nil
}

// FetchedAt is the time of the last successful download, zero if none.
func (c *Cache) FetchedAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetchedAt
}
