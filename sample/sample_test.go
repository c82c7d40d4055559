package sample

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realestate-compare/models"
)

func TestListingsDeterministic(t *testing.T) {
	a := New(42).Listings(10)
	b := New(42).Listings(10)
	assert.Equal(t, a, b)
	assert.Equal(t, models.ListingColumns, a.Columns)
}

func TestListingsRanges(t *testing.T) {
	listings := New(7).Listings(200)
	require.Equal(t, 200, listings.Len())

	for _, l := range listings.Rows {
		assert.True(t, strings.HasPrefix(l.MLSNumber, "M"))
		assert.Contains(t, l.Address, ", Ottawa, ON K")
		assert.Contains(t, l.Address, l.Neighborhood)

		assert.GreaterOrEqual(t, l.Price.Int, 300000)
		assert.LessOrEqual(t, l.Price.Int, 1500000)
		assert.Equal(t, l.Price.Int/100, l.PropertyTax.Int)
		assert.GreaterOrEqual(t, l.Bedrooms.Int, 1)
		assert.LessOrEqual(t, l.Bedrooms.Int, 6)
		assert.GreaterOrEqual(t, l.YearBuilt.Int, 1900)
		assert.LessOrEqual(t, l.YearBuilt.Int, 2023)

		sqft, ok := l.SquareFeet.SquareFeet()
		require.True(t, ok)
		assert.GreaterOrEqual(t, sqft, 800)
		assert.LessOrEqual(t, sqft, 3500)
	}
}

func TestListingsZeroCount(t *testing.T) {
	listings := New(1).Listings(0)
	assert.True(t, listings.Empty())
	assert.Equal(t, models.ListingColumns, listings.Columns)
}

func TestCommutesDowntownShorter(t *testing.T) {
	g := New(3)
	var addrs []string
	for i := 0; i < 50; i++ {
		addrs = append(addrs, "1 Bank St, Centretown, Ottawa, ON", "2 Main St, Kanata, Ottawa, ON")
	}
	commutes := g.Commutes(addrs)
	require.Equal(t, len(addrs), commutes.Len())
	assert.Equal(t, models.CommuteColumns, commutes.Columns)

	for i, c := range commutes.Rows {
		assert.Equal(t, addrs[i], c.Address)
		assert.Equal(t, models.ModeDriving, c.Mode)
		minutes := c.CommuteTimeSeconds.Int / 60
		if i%2 == 0 {
			assert.LessOrEqual(t, minutes, 20)
		} else {
			assert.GreaterOrEqual(t, minutes, 15)
		}
		assert.True(t, strings.HasSuffix(c.CommuteTimeText, " mins"))
		assert.Equal(t, 0, c.DistanceValue.Int%1000)
	}
}

func TestCrime(t *testing.T) {
	crime := New(9).Crime(25)
	require.Equal(t, 25, crime.Len())
	assert.Equal(t, CrimeColumns, crime.Columns)
	for _, r := range crime.Rows {
		assert.Equal(t, "2023", r.Field("reported_year"))
		assert.True(t, strings.HasPrefix(r.Field("date"), "2023-"))
		assert.Contains(t, crimeTypes, r.Field("crime_type"))
	}
}

func TestFilterListings(t *testing.T) {
	table := models.NewTable(models.ListingColumns, []models.Listing{
		{Address: "a", Price: models.IntOf(400000), Bedrooms: models.IntOf(2), Bathrooms: models.IntOf(1)},
		{Address: "b", Price: models.IntOf(900000), Bedrooms: models.IntOf(4), Bathrooms: models.IntOf(3)},
		{Address: "c", Bedrooms: models.IntOf(5), Bathrooms: models.IntOf(2)},
	})

	tests := []struct {
		name                            string
		priceMin, priceMax, beds, baths int
		want                            []string
	}{
		{"no bounds", 0, 0, 0, 0, []string{"a", "b", "c"}},
		{"max price drops missing price", 0, 500000, 0, 0, []string{"a"}},
		{"min price", 500000, 0, 0, 0, []string{"b"}},
		{"min beds", 0, 0, 3, 0, []string{"b", "c"}},
		{"min baths", 0, 0, 0, 2, []string{"b", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterListings(table, tt.priceMin, tt.priceMax, tt.beds, tt.baths)
			var addrs []string
			for _, l := range got.Rows {
				addrs = append(addrs, l.Address)
			}
			assert.Equal(t, tt.want, addrs)
		})
	}
}
