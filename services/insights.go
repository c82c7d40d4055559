package services

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"realestate-compare/models"
	"realestate-compare/utils"
)

type InsightService struct {
	logger  *utils.Logger
	printer *message.Printer
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger, printer: message.NewPrinter(language.English)}
}

func (s *InsightService) Generate(report *models.Table[models.Merged]) *models.InsightReport {
	r := &models.InsightReport{
		ListingsByArea: make(map[string]int),
	}

	if report.Empty() {
		return r
	}

	r.TotalListings = report.Len()

	var priced []models.Merged
	var commuting []models.Merged
	for _, m := range report.Rows {
		if m.Matched() {
			r.MatchedCommutes++
		}
		if m.Listing.Price.Valid && m.Listing.Price.Int > 0 {
			priced = append(priced, m)
		}
		if m.CommuteSeconds().Valid {
			commuting = append(commuting, m)
		}
		if n := m.Listing.Neighborhood; n != "" {
			r.ListingsByArea[n]++
		}
	}

	// Price stats (only listings with a price)
	if len(priced) > 0 {
		r.MinPrice = priced[0].Listing.Price.Int
		r.MaxPrice = priced[0].Listing.Price.Int
		r.MostExpensive = &priced[0]
		var total float64
		for i := range priced {
			p := priced[i].Listing.Price.Int
			total += float64(p)
			if p < r.MinPrice {
				r.MinPrice = p
			}
			if p > r.MaxPrice {
				r.MaxPrice = p
				r.MostExpensive = &priced[i]
			}
		}
		r.AveragePrice = round2(total / float64(len(priced)))
	}

	// Top 5 shortest commutes
	sort.SliceStable(commuting, func(i, j int) bool {
		return commuting[i].CommuteSeconds().Int < commuting[j].CommuteSeconds().Int
	})
	if len(commuting) > 0 {
		var secs int
		for _, m := range commuting {
			secs += m.CommuteSeconds().Int
		}
		r.AverageCommuteMinutes = round2(float64(secs) / float64(len(commuting)) / 60)
	}
	if len(commuting) > 5 {
		commuting = commuting[:5]
	}
	r.ShortestCommutes = commuting

	s.logger.Debug("[insights] %d listings, %d with price, %d with commute time",
		r.TotalListings, len(priced), r.MatchedCommutes)
	return r
}

// Money formats whole dollars with thousands separators, e.g. "$599,900".
func (s *InsightService) Money(amount int) string {
	return s.printer.Sprintf("$%d", amount)
}

func (s *InsightService) Print(w io.Writer, r *models.InsightReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  🏠 OTTAWA PROPERTY REPORT\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	// Overview
	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Listings in report     : \033[1m%d\033[0m\n", r.TotalListings)
	fmt.Fprintf(w, "  With commute estimate  : \033[1m%d\033[0m\n", r.MatchedCommutes)
	fmt.Fprintln(w)

	// Price Stats
	fmt.Fprintf(w, "\033[1;33m  Price Statistics\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if r.AveragePrice > 0 {
		fmt.Fprintf(w, "  Average price : \033[1;32m%s\033[0m\n", s.Money(int(r.AveragePrice+0.5)))
		fmt.Fprintf(w, "  Minimum price : \033[1;32m%s\033[0m\n", s.Money(r.MinPrice))
		fmt.Fprintf(w, "  Maximum price : \033[1;32m%s\033[0m\n", s.Money(r.MaxPrice))
	} else {
		fmt.Fprintf(w, "  No price data available\n")
	}
	fmt.Fprintln(w)

	// Most Expensive
	if r.MostExpensive != nil {
		fmt.Fprintf(w, "\033[1;33m  Most Expensive Listing\033[0m\n")
		fmt.Fprintf(w, "  %s\n", thin)
		fmt.Fprintf(w, "  %s\n", truncate(r.MostExpensive.Listing.Address, 50))
		if n := r.MostExpensive.Listing.Neighborhood; n != "" {
			fmt.Fprintf(w, "  Area  : %s\n", n)
		}
		fmt.Fprintf(w, "  Price : \033[1;31m%s\033[0m\n", s.Money(r.MostExpensive.Listing.Price.Int))
		fmt.Fprintln(w)
	}

	// ── SHORTEST COMMUTES ────────────────────────────────────────────────
	fmt.Fprintf(w, "\033[1;33m  Shortest Commutes\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.ShortestCommutes) == 0 {
		fmt.Fprintf(w, "  No commute estimates available\n")
	} else {
		for i, m := range r.ShortestCommutes {
			fmt.Fprintf(w, "  \033[1m%d.\033[0m %-40s \033[1;32m%s\033[0m\n",
				i+1, truncate(m.Listing.Address, 38), m.CommuteText())
		}
		fmt.Fprintf(w, "  Average : %.1f min\n", r.AverageCommuteMinutes)
	}
	fmt.Fprintln(w)

	// Listings by Area
	fmt.Fprintf(w, "\033[1;33m  Listings by Neighbourhood\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.ListingsByArea) == 0 {
		fmt.Fprintf(w, "  No neighbourhood data\n")
	} else {
		type areaCount struct {
			area  string
			count int
		}
		var areas []areaCount
		for a, cnt := range r.ListingsByArea {
			areas = append(areas, areaCount{a, cnt})
		}
		sort.Slice(areas, func(i, j int) bool {
			if areas[i].count != areas[j].count {
				return areas[i].count > areas[j].count
			}
			return areas[i].area < areas[j].area
		})
		for _, ac := range areas {
			bar := strings.Repeat("█", ac.count)
			fmt.Fprintf(w, "  %-30s %s (%d)\n", truncate(ac.area, 28), bar, ac.count)
		}
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
