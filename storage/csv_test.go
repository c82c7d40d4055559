package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realestate-compare/models"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCommutesMissingFileFallsBack(t *testing.T) {
	res := LoadCommutes(filepath.Join(t.TempDir(), "nope.csv"))

	require.NotNil(t, res.Table)
	assert.True(t, res.Fallback())
	assert.Equal(t, FallbackEmpty, res.Status)
	assert.True(t, errors.Is(res.Reason, ErrSourceMissing))
	assert.Equal(t, []string{
		"address", "commute_time_text", "commute_time_seconds",
		"distance_text", "distance_value", "mode",
	}, res.Table.Columns)
	assert.Equal(t, 0, res.Table.Len())
}

func TestLoadListingsFallbacks(t *testing.T) {
	tests := []struct {
		name    string
		content string
		reason  error
	}{
		{"empty file", "", ErrSourceEmpty},
		{"whitespace only", "  \n\n", ErrSourceEmpty},
		{"too many fields", "address,price\n1 Main St,500000,extra\n", ErrSourceInvalid},
		{"bare quote", "address,price\n\"1 Main St,500000\n", ErrSourceInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := LoadListings(writeFile(t, "listings.csv", tt.content))
			assert.True(t, res.Fallback())
			assert.True(t, errors.Is(res.Reason, tt.reason), "reason: %v", res.Reason)
			assert.Equal(t, models.ListingFallbackColumns, res.Table.Columns)
			assert.True(t, res.Table.Empty())
		})
	}
}

func TestLoadListingsParsesRows(t *testing.T) {
	path := writeFile(t, "listings.csv", "\xef\xbb\xbfaddress,price,square_feet,year_built,garage\n"+
		"1 Main St,500000,1500 sqft,1998,yes\n"+
		"\"2 Elm St, Ottawa\",\"$650,000\",,,\n"+
		"3 Oak Ave\n")

	res := LoadListings(path)
	require.False(t, res.Fallback(), "reason: %v", res.Reason)
	assert.Equal(t, []string{"address", "price", "square_feet", "year_built", "garage"}, res.Table.Columns)
	require.Equal(t, 3, res.Table.Len())

	first := res.Table.Rows[0]
	assert.Equal(t, "1 Main St", first.Address)
	assert.Equal(t, 500000, first.Price.Int)
	assert.True(t, first.Price.Valid)
	sqft, ok := first.SquareFeet.SquareFeet()
	assert.True(t, ok)
	assert.Equal(t, 1500, sqft)
	assert.Equal(t, "yes", first.Field("garage"))

	second := res.Table.Rows[1]
	assert.Equal(t, "2 Elm St, Ottawa", second.Address)
	assert.Equal(t, 650000, second.Price.Int)
	assert.Equal(t, "$650,000", second.Price.String())
	assert.False(t, second.YearBuilt.Valid)

	// short rows are padded
	third := res.Table.Rows[2]
	assert.Equal(t, "3 Oak Ave", third.Address)
	assert.False(t, third.Price.Valid)
}

func TestLoadHeaderOnlyIsLoadedNotFallback(t *testing.T) {
	res := LoadCommutes(writeFile(t, "commute.csv", "address,commute_time_text\n"))

	assert.Equal(t, Loaded, res.Status)
	assert.NoError(t, res.Reason)
	assert.Equal(t, []string{"address", "commute_time_text"}, res.Table.Columns)
	assert.Equal(t, 0, res.Table.Len())
}

func TestLoadCrime(t *testing.T) {
	t.Run("no path", func(t *testing.T) {
		assert.Nil(t, LoadCrime(""))
	})
	t.Run("missing file", func(t *testing.T) {
		assert.Nil(t, LoadCrime(filepath.Join(t.TempDir(), "crime.csv")))
	})
	t.Run("unreadable", func(t *testing.T) {
		res := LoadCrime(writeFile(t, "crime.csv", ""))
		require.NotNil(t, res)
		assert.True(t, res.Fallback())
		assert.Empty(t, res.Table.Columns)
	})
	t.Run("passed through", func(t *testing.T) {
		res := LoadCrime(writeFile(t, "crime.csv", "offence,year\nTheft,2023\n"))
		require.NotNil(t, res)
		require.Equal(t, 1, res.Table.Len())
		assert.Equal(t, "Theft", res.Table.Rows[0].Field("offence"))
	})
}

func TestWriteDatasetCreatesDirsAndOverwrites(t *testing.T) {
	out := filepath.Join(t.TempDir(), "processed", "nested", "report.csv")

	first := models.NewTable([]string{"address", "price"}, []models.Listing{
		{Address: "1 Main St", Price: models.IntOf(500000)},
		{Address: "2 Elm St"},
	})
	got, err := WriteDataset(first, out)
	require.NoError(t, err)
	assert.Same(t, first, got)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "address,price\n1 Main St,500000\n2 Elm St,\n", string(data))

	second := models.NewTable([]string{"address"}, []models.Listing{{Address: "9 Pine Rd"}})
	_, err = WriteDataset(second, out)
	require.NoError(t, err)

	data, err = os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "address\n9 Pine Rd\n", string(data))
}

func TestWriteDatasetRoundTrip(t *testing.T) {
	out := filepath.Join(t.TempDir(), "commute.csv")
	in := models.NewTable(models.CommuteColumns, []models.Commute{
		{Address: "1 Main St, Ottawa", CommuteTimeText: "10 mins", CommuteTimeSeconds: models.IntOf(600), Mode: models.ModeDriving},
		models.Unavailable("2 Elm St", models.ModeTransit),
	})
	_, err := WriteDataset(in, out)
	require.NoError(t, err)

	res := LoadCommutes(out)
	require.False(t, res.Fallback())
	assert.Equal(t, models.CommuteColumns, res.Table.Columns)
	require.Equal(t, 2, res.Table.Len())
	assert.Equal(t, "1 Main St, Ottawa", res.Table.Rows[0].Address)
	assert.Equal(t, models.NotAvailable, res.Table.Rows[1].CommuteTimeText)
	assert.False(t, res.Table.Rows[1].CommuteTimeSeconds.Valid)
}

func TestWriteDatasetUnwritablePath(t *testing.T) {
	blocker := writeFile(t, "file", "x")
	_, err := WriteDataset(models.NewTable[models.Listing]([]string{"address"}, nil),
		filepath.Join(blocker, "out.csv"))
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "csv:"), err.Error())
}

func TestBuildInsertPlaceholders(t *testing.T) {
	commute := &models.Commute{CommuteTimeText: "10 mins", CommuteTimeSeconds: models.IntOf(600), Mode: models.ModeDriving}
	batch := []models.Merged{
		models.NewMerged(models.Listing{Address: "1 Main St", Price: models.IntOf(500000), SquareFeet: models.ParseArea("1,200 sqft")}, commute, nil),
		models.NewMerged(models.Listing{Address: "2 Elm St"}, nil, nil),
	}

	query, args := buildInsert("run-1", batch)

	width := len(reportColumns) + 1
	assert.Len(t, args, 2*width)
	assert.Contains(t, query, "INSERT INTO property_report (run_id, address, price,")
	assert.Contains(t, query, "($1,$2,")
	assert.Contains(t, query, "$30)")

	assert.Equal(t, "run-1", args[0])
	assert.Equal(t, "1 Main St", args[1])
	require.NotNil(t, args[5])
	assert.Equal(t, 1200, *args[5].(*int))
	assert.Equal(t, "10 mins", args[10])

	// unmatched row has null commute values
	for _, v := range args[width+10:] {
		assert.Nil(t, v)
	}
}
