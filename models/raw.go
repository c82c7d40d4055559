package models

import "time"

// RawListing holds unprocessed scraped values exactly as the source returned them.
type RawListing struct {
	Address      string
	RawPrice     string
	Bedrooms     string
	Bathrooms    string
	YearBuilt    string
	SizeInterior string
	RawTax       string
	MLSNumber    string
	Neighborhood string
	Source       string
	ScrapedAt    time.Time
}
