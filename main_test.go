package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realestate-compare/config"
	"realestate-compare/models"
)

func withConfig(t *testing.T, c *config.Config) {
	t.Helper()
	prev := cfg
	cfg = c
	t.Cleanup(func() { cfg = prev })
}

func TestSearchFlagsUseConfigDefaults(t *testing.T) {
	withConfig(t, &config.Config{
		SearchLocation:     "Ottawa, ON",
		DefaultDestination: "Parliament Hill, Ottawa, ON",
		CommuteMode:        "driving",
		MaxListings:        50,
	})

	req, err := (&searchFlags{minBeds: 2}).request()
	require.NoError(t, err)
	assert.Equal(t, "Ottawa, ON", req.Location)
	assert.Equal(t, "Parliament Hill, Ottawa, ON", req.Destination)
	assert.Equal(t, models.ModeDriving, req.Mode)
	assert.Equal(t, 50, req.MaxListings)
	assert.Equal(t, 2, req.MinBedrooms)
}

func TestSearchFlagsOverrideConfig(t *testing.T) {
	withConfig(t, &config.Config{CommuteMode: "driving", MaxListings: 50})

	req, err := (&searchFlags{destination: "Tunney's Pasture", mode: "TRANSIT", maxListings: 5}).request()
	require.NoError(t, err)
	assert.Equal(t, "Tunney's Pasture", req.Destination)
	assert.Equal(t, models.ModeTransit, req.Mode)
	assert.Equal(t, 5, req.MaxListings)
}

func TestSearchFlagsRejectUnknownMode(t *testing.T) {
	withConfig(t, &config.Config{CommuteMode: "driving"})

	_, err := (&searchFlags{mode: "hovercraft"}).request()
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInvalidMode))
}

func TestFirstSet(t *testing.T) {
	assert.Equal(t, "b", firstSet("", "b", "c"))
	assert.Equal(t, "", firstSet("", ""))
}
