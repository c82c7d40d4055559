package services

import (
	"strings"

	"realestate-compare/models"
	"realestate-compare/utils"
)

// NormalizeAddress derives the join key for an address: lower-cased, then trimmed.
// Nothing else is folded, so "St" and "Street" remain different keys.
func NormalizeAddress(address string) string {
	return strings.TrimSpace(strings.ToLower(address))
}

// Merger left-joins listings to commute estimates on the normalized address.
type Merger struct {
	logger *utils.Logger
}

// NewMerger creates a Merger with the given logger.
func NewMerger(logger *utils.Logger) *Merger {
	return &Merger{logger: logger}
}

// MergeListingsAndCommutes keeps every listing, in order, and attaches the commute
// record whose normalized address equals the listing's. When several commute
// records share a key the first one wins; listings are never duplicated. Blank
// keys never match.
//
// The merged columns are the listing columns followed by the commute columns that
// do not collide with them, so address appears once and keeps the listing's text.
func (m *Merger) MergeListingsAndCommutes(
	listings *models.Table[models.Listing],
	commutes *models.Table[models.Commute],
) *models.Table[models.Merged] {
	var leftCols, rightCols []string
	if listings != nil {
		leftCols = listings.Columns
	}
	if commutes != nil {
		rightCols = commutes.Columns
	}

	columns, owned := mergeColumns(leftCols, rightCols)

	index := make(map[string]int, commutes.Len())
	duplicates := 0
	if commutes.HasColumn(models.ColAddress) {
		for i, c := range commutes.Rows {
			key := NormalizeAddress(c.Address)
			if key == "" {
				continue
			}
			if _, exists := index[key]; exists {
				duplicates++
				continue
			}
			index[key] = i
		}
	}
	if duplicates > 0 {
		m.logger.Warn("[merger] %d commute rows share an address with an earlier row; keeping the first match", duplicates)
	}

	rows := make([]models.Merged, 0, listings.Len())
	matched := 0
	joinable := listings.HasColumn(models.ColAddress)
	for i := 0; i < listings.Len(); i++ {
		l := listings.Rows[i]
		var commute *models.Commute
		if joinable {
			if j, ok := index[NormalizeAddress(l.Address)]; ok {
				c := commutes.Rows[j]
				commute = &c
				matched++
			}
		}
		rows = append(rows, models.NewMerged(l, commute, owned))
	}

	m.logger.Info("[merger] Merged %d listings with %d commute rows (%d matched)",
		listings.Len(), commutes.Len(), matched)
	return models.NewTable(columns, rows)
}

// mergeColumns returns the output schema and the set of columns served by the
// commute side. Right columns that collide with a left column are dropped.
func mergeColumns(left, right []string) ([]string, map[string]struct{}) {
	seen := make(map[string]struct{}, len(left)+len(right))
	columns := make([]string, 0, len(left)+len(right))
	for _, c := range left {
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		columns = append(columns, c)
	}

	owned := make(map[string]struct{}, len(right))
	for _, c := range right {
		if _, collides := seen[c]; collides {
			continue
		}
		seen[c] = struct{}{}
		owned[c] = struct{}{}
		columns = append(columns, c)
	}
	return columns, owned
}

// AddCrimeData is the hook for folding crime incidents into the report by
// location. No location join is defined yet, so the merged table is returned
// unchanged whether or not crime data is present.
func (m *Merger) AddCrimeData(
	merged *models.Table[models.Merged],
	crime *models.Table[models.CrimeRecord],
) *models.Table[models.Merged] {
	if crime == nil {
		return merged
	}
	m.logger.Debug("[merger] Crime table with %d rows available; report left unchanged", crime.Len())
	return merged
}
