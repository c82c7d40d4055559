package services

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"realestate-compare/models"
	"realestate-compare/utils"
)

var (
	// moneyRegexp captures the first amount, allowing thousands separators and cents
	moneyRegexp = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)
	// countRegexp captures every integer in a count such as "3 + 1"
	countRegexp = regexp.MustCompile(`\d+`)
	// yearRegexp captures a plausible four-digit construction year
	yearRegexp = regexp.MustCompile(`\b(1[6-9]\d{2}|20\d{2})\b`)
)

// Cleaner transforms RawListings into typed Listings.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean processes raw listings and returns cleaned records. Listings without an
// address are dropped, as are repeated MLS numbers.
func (c *Cleaner) Clean(raw []*models.RawListing) []models.Listing {
	seen := utils.NewKeySet()
	result := make([]models.Listing, 0, len(raw))

	for _, r := range raw {
		address := normaliseAddressText(r.Address)
		if address == "" {
			c.logger.Warn("[cleaner] Dropping listing with empty address (MLS %q)", r.MLSNumber)
			continue
		}

		mls := strings.TrimSpace(r.MLSNumber)
		if mls != "" && !seen.Add(mls) {
			c.logger.Debug("[cleaner] Duplicate MLS number skipped: %s", mls)
			continue
		}

		result = append(result, models.Listing{
			Address:      address,
			Price:        parseMoney(r.RawPrice),
			Bedrooms:     parseCount(r.Bedrooms),
			Bathrooms:    parseCount(r.Bathrooms),
			YearBuilt:    parseYear(r.YearBuilt),
			SquareFeet:   models.ParseArea(r.SizeInterior),
			PropertyTax:  parseMoney(r.RawTax),
			MLSNumber:    mls,
			Neighborhood: normaliseText(r.Neighborhood),
		})
	}

	c.logger.Info("[cleaner] Cleaned %d → %d listings (dropped %d)",
		len(raw), len(result), len(raw)-len(result))
	return result
}

// parseMoney extracts a whole-dollar amount, rounding cents the same way
// loaded CSV cells are rounded.
// Examples:
//
//	"$599,900"        → 599900
//	"$4,512.30 (2024)" → 4512
//	"$4,512.75"        → 4513
//	"Price on request" → null
func parseMoney(raw string) models.NullInt {
	n, ok := models.ParseWhole(moneyRegexp.FindString(raw))
	if !ok {
		return models.NullInt{}
	}
	return models.IntOf(n)
}

// parseCount sums the parts of a room count, so "3 + 1" (above and below grade) is 4.
func parseCount(raw string) models.NullInt {
	parts := countRegexp.FindAllString(raw, -1)
	if len(parts) == 0 {
		return models.NullInt{}
	}
	total := 0
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return models.NullInt{}
		}
		total += n
	}
	return models.IntOf(total)
}

func parseYear(raw string) models.NullInt {
	m := yearRegexp.FindStringSubmatch(raw)
	if len(m) < 2 {
		return models.NullInt{}
	}
	n, _ := strconv.Atoi(m[1])
	return models.IntOf(n)
}

// normaliseAddressText joins Realtor.ca's "street|city" form with a comma and
// collapses whitespace.
func normaliseAddressText(s string) string {
	var parts []string
	for _, p := range strings.Split(s, "|") {
		if p = normaliseText(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}
