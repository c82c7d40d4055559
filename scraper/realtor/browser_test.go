package realtor

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resultPage = `<html><body>
<div class="cardCon" data-mls="X1234567">
  <div class="listingCardPrice">$599,900</div>
  <div class="listingCardAddress">123 Bank St
     Ottawa, Ontario K1P1A1</div>
  <div class="listingCardIconNum propertyIcon-Beds">3 + 1</div>
  <div class="listingCardIconNum propertyIcon-Baths">2</div>
</div>
<div class="cardCon">
  <div class="listingCardPrice">$425,000</div>
  <div class="address">45 Elm Ave, Ottawa</div>
  <div class="listingCardMLS">MLS® Number: X7654321</div>
</div>
<div class="cardCon">
  <div class="listingCardPrice">$1</div>
</div>
</body></html>`

func TestParseCards(t *testing.T) {
	cards, err := ParseCards(resultPage)
	require.NoError(t, err)
	require.Len(t, cards, 2, "cards without an address are skipped")

	first := cards[0]
	assert.Equal(t, "123 Bank St Ottawa, Ontario K1P1A1", first.Address)
	assert.Equal(t, "$599,900", first.RawPrice)
	assert.Equal(t, "3 + 1", first.Bedrooms)
	assert.Equal(t, "2", first.Bathrooms)
	assert.Equal(t, "X1234567", first.MLSNumber)
	assert.Equal(t, source, first.Source)

	second := cards[1]
	assert.Equal(t, "45 Elm Ave, Ottawa", second.Address)
	assert.Equal(t, "X7654321", second.MLSNumber)
	assert.Empty(t, second.Bedrooms)
}

func TestParseCardsEmptyPage(t *testing.T) {
	cards, err := ParseCards("<html><body><p>No results</p></body></html>")
	require.NoError(t, err)
	assert.Empty(t, cards)
}

func TestSearchURL(t *testing.T) {
	u := searchURL("Ottawa, ON", SearchFilter{PriceMin: 300000, BedroomsMin: 2})
	require.True(t, strings.HasPrefix(u, mapSearchURL+"#"))

	frag, err := url.ParseQuery(strings.TrimPrefix(u, mapSearchURL+"#"))
	require.NoError(t, err)
	assert.Equal(t, "Ottawa, ON", frag.Get("GeoName"))
	assert.Equal(t, "300000", frag.Get("PriceMin"))
	assert.Equal(t, "2-0", frag.Get("BedRange"))
	assert.Empty(t, frag.Get("PriceMax"))
}

func TestFindChromeBinaryPrefersConfigured(t *testing.T) {
	assert.Equal(t, "/opt/chrome", findChromeBinary("/opt/chrome"))

	t.Setenv("CHROME_BIN", "/env/chrome")
	assert.Equal(t, "/env/chrome", findChromeBinary(""))
}
