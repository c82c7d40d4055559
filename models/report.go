package models

// InsightReport holds the computed analytics over a merged dataset.
type InsightReport struct {
	TotalListings   int
	MatchedCommutes int
	AveragePrice    float64
	MinPrice        int
	MaxPrice        int
	MostExpensive   *Merged
	// ShortestCommutes is sorted by commute seconds, ascending.
	ShortestCommutes      []Merged
	AverageCommuteMinutes float64
	ListingsByArea        map[string]int
}
