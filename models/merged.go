package models

// Merged is a listing joined with its commute estimate. Commute is nil when no
// commute record matched the listing's address.
type Merged struct {
	Listing Listing
	Commute *Commute

	// commuteColumns names the columns this row takes from the commute side.
	// It is shared by every row of one merged table.
	commuteColumns map[string]struct{}
}

// NewMerged builds a merged row whose listed columns are served by the commute side.
func NewMerged(l Listing, c *Commute, commuteColumns map[string]struct{}) Merged {
	return Merged{Listing: l, Commute: c, commuteColumns: commuteColumns}
}

// Matched reports whether a commute record was joined.
func (m Merged) Matched() bool {
	return m.Commute != nil
}

// Field renders a column value. Commute columns are empty for unmatched rows.
func (m Merged) Field(column string) string {
	if _, ok := m.commuteColumns[column]; ok {
		if m.Commute == nil {
			return ""
		}
		return m.Commute.Field(column)
	}
	return m.Listing.Field(column)
}

// CommuteSeconds is null for unmatched rows and failed commute queries.
func (m Merged) CommuteSeconds() NullInt {
	if m.Commute == nil {
		return NullInt{}
	}
	return m.Commute.CommuteTimeSeconds
}

// CommuteText is empty for unmatched rows.
func (m Merged) CommuteText() string {
	if m.Commute == nil {
		return ""
	}
	return m.Commute.CommuteTimeText
}

// DistanceText is empty for unmatched rows.
func (m Merged) DistanceText() string {
	if m.Commute == nil {
		return ""
	}
	return m.Commute.DistanceText
}
