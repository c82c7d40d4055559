// Package sample generates realistic Ottawa listings, commutes and crime
// incidents for development when the upstream sources block scraping.
package sample

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"realestate-compare/models"
)

var neighborhoods = []string{
	"Westboro", "The Glebe", "Centretown", "Sandy Hill", "ByWard Market",
	"Hintonburg", "New Edinburgh", "Rockcliffe Park", "Alta Vista", "Kanata",
	"Barrhaven", "Orleans", "Nepean", "Vanier", "Stittsville",
}

// downtown neighborhoods get shorter commutes
var downtown = map[string]bool{
	"Centretown": true, "The Glebe": true, "ByWard Market": true, "Sandy Hill": true, "Westboro": true,
}

var streets = []string{
	"Bank", "Elgin", "Wellington", "Somerset", "Preston",
	"Rideau", "Sussex", "Laurier", "O'Connor", "Merivale",
	"Carling", "Baseline", "Woodroffe", "Montreal", "Riverside",
}

var postalPrefixes = []string{"K1P", "K1R", "K1S", "K1V", "K1Y", "K1Z", "K2P"}

var crimeTypes = []string{
	"Break and Enter", "Theft of Vehicle", "Theft from Vehicle", "Assault",
	"Mischief", "Robbery", "Drug Offence", "Fraud", "Property Damage",
}

// Addresses used when a run has no listings to look up commutes for.
var Addresses = []string{
	"150 Elgin St, Ottawa, ON",
	"1385 Bank St, Ottawa, ON",
	"100 Bayshore Dr, Ottawa, ON",
}

// CrimeColumns is the schema of generated crime tables.
var CrimeColumns = []string{"date", "crime_type", "neighborhood", "reported_year"}

// Generator produces sample tables. The same seed always yields the same data.
type Generator struct {
	rng *rand.Rand
}

// New creates a Generator seeded with seed.
func New(seed uint64) *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// between returns a uniform int in [lo, hi].
func (g *Generator) between(lo, hi int) int {
	return lo + g.rng.IntN(hi-lo+1)
}

func (g *Generator) pick(from []string) string {
	return from[g.rng.IntN(len(from))]
}

// Listings generates count listings with the full listing schema.
func (g *Generator) Listings(count int) *models.Table[models.Listing] {
	rows := make([]models.Listing, 0, max(count, 0))
	for i := 0; i < count; i++ {
		neighborhood := g.pick(neighborhoods)
		postal := fmt.Sprintf("%s %d%c%d", g.pick(postalPrefixes), g.rng.IntN(10), 'A'+rune(g.rng.IntN(26)), g.rng.IntN(10))
		price := g.between(300000, 1500000)

		rows = append(rows, models.Listing{
			Address:      fmt.Sprintf("%d %s St, %s, Ottawa, ON %s", g.between(1, 2000), g.pick(streets), neighborhood, postal),
			Price:        models.IntOf(price),
			Bedrooms:     models.IntOf(g.between(1, 6)),
			Bathrooms:    models.IntOf(g.between(1, 4)),
			SquareFeet:   models.AreaOf(g.between(800, 3500)),
			YearBuilt:    models.IntOf(g.between(1900, 2023)),
			PropertyTax:  models.IntOf(price / 100),
			MLSNumber:    "M" + strconv.Itoa(g.between(1000000, 9999999)),
			Neighborhood: neighborhood,
		})
	}
	return models.NewTable(models.ListingColumns, rows)
}

// Commutes generates one driving commute per address. Addresses whose second
// comma-separated part is a downtown neighborhood get shorter trips.
func (g *Generator) Commutes(addresses []string) *models.Table[models.Commute] {
	rows := make([]models.Commute, 0, len(addresses))
	for _, addr := range addresses {
		neighborhood := "Ottawa"
		if parts := strings.Split(addr, ", "); len(parts) > 1 {
			neighborhood = parts[1]
		}

		var minutes, km int
		if downtown[neighborhood] {
			minutes, km = g.between(5, 20), g.between(1, 10)
		} else {
			minutes, km = g.between(15, 45), g.between(8, 25)
		}

		rows = append(rows, models.Commute{
			Address:            addr,
			CommuteTimeText:    fmt.Sprintf("%d mins", minutes),
			CommuteTimeSeconds: models.IntOf(minutes * 60),
			DistanceText:       fmt.Sprintf("%d km", km),
			DistanceValue:      models.IntOf(km * 1000),
			Mode:               models.ModeDriving,
		})
	}
	return models.NewTable(models.CommuteColumns, rows)
}

// Crime generates count incidents reported in 2023.
func (g *Generator) Crime(count int) *models.Table[models.CrimeRecord] {
	rows := make([]models.CrimeRecord, 0, max(count, 0))
	for i := 0; i < count; i++ {
		rows = append(rows, models.CrimeRecord{
			"date":          fmt.Sprintf("2023-%d-%d", g.between(1, 12), g.between(1, 28)),
			"crime_type":    g.pick(crimeTypes),
			"neighborhood":  g.pick(neighborhoods),
			"reported_year": "2023",
		})
	}
	return models.NewTable(CrimeColumns, rows)
}

// FilterListings keeps listings matching the price range and minimum room
// counts. Zero bounds are ignored; listings with a missing value fail any
// bound on that value.
func FilterListings(t *models.Table[models.Listing], priceMin, priceMax, minBeds, minBaths int) *models.Table[models.Listing] {
	if t == nil {
		return nil
	}
	var rows []models.Listing
	for _, l := range t.Rows {
		if !atLeast(l.Price, priceMin) || !atMost(l.Price, priceMax) {
			continue
		}
		if !atLeast(l.Bedrooms, minBeds) || !atLeast(l.Bathrooms, minBaths) {
			continue
		}
		rows = append(rows, l)
	}
	return models.NewTable(t.Columns, rows)
}

func atLeast(v models.NullInt, bound int) bool {
	return bound <= 0 || (v.Valid && v.Int >= bound)
}

func atMost(v models.NullInt, bound int) bool {
	return bound <= 0 || (v.Valid && v.Int <= bound)
}
