package models

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Commute column names. ColAddress is shared with listings.
const (
	ColCommuteTimeText    = "commute_time_text"
	ColCommuteTimeSeconds = "commute_time_seconds"
	ColDistanceText       = "distance_text"
	ColDistanceValue      = "distance_value"
	ColMode               = "mode"
)

// CommuteColumns is the commute schema, also used for the empty fallback table.
var CommuteColumns = []string{
	ColAddress, ColCommuteTimeText, ColCommuteTimeSeconds,
	ColDistanceText, ColDistanceValue, ColMode,
}

// NotAvailable is the text written when an upstream commute query failed.
const NotAvailable = "N/A"

// TravelMode is a Distance Matrix travel mode.
type TravelMode string

const (
	ModeDriving   TravelMode = "driving"
	ModeWalking   TravelMode = "walking"
	ModeTransit   TravelMode = "transit"
	ModeBicycling TravelMode = "bicycling"
)

// TravelModes lists every supported mode.
var TravelModes = []TravelMode{ModeDriving, ModeWalking, ModeTransit, ModeBicycling}

// ErrInvalidMode is returned for a mode outside TravelModes.
var ErrInvalidMode = eris.New("invalid travel mode")

// ParseTravelMode validates a mode string, case-insensitively.
func ParseTravelMode(s string) (TravelMode, error) {
	m := TravelMode(strings.ToLower(strings.TrimSpace(s)))
	if m.Valid() {
		return m, nil
	}
	return "", eris.Wrapf(ErrInvalidMode, "%q", s)
}

func (m TravelMode) Valid() bool {
	for _, v := range TravelModes {
		if m == v {
			return true
		}
	}
	return false
}

// Commute is one origin-to-destination commute estimate.
type Commute struct {
	Address            string
	CommuteTimeText    string
	CommuteTimeSeconds NullInt
	DistanceText       string
	DistanceValue      NullInt
	Mode               TravelMode

	Extra map[string]string
}

// Unavailable builds the record written when the commute query failed.
func Unavailable(address string, mode TravelMode) Commute {
	return Commute{
		Address:         address,
		CommuteTimeText: NotAvailable,
		DistanceText:    NotAvailable,
		Mode:            mode,
	}
}

// Field renders a column value; unknown columns come from Extra.
func (c Commute) Field(column string) string {
	switch column {
	case ColAddress:
		return c.Address
	case ColCommuteTimeText:
		return c.CommuteTimeText
	case ColCommuteTimeSeconds:
		return c.CommuteTimeSeconds.String()
	case ColDistanceText:
		return c.DistanceText
	case ColDistanceValue:
		return c.DistanceValue.String()
	case ColMode:
		return string(c.Mode)
	}
	return c.Extra[column]
}

// SetField assigns a raw CSV cell to the named column. Cells are stored as
// written; an unknown mode is not a load failure.
func (c *Commute) SetField(column, value string) {
	switch column {
	case ColAddress:
		c.Address = value
	case ColCommuteTimeText:
		c.CommuteTimeText = value
	case ColCommuteTimeSeconds:
		c.CommuteTimeSeconds = ParseNullInt(value)
	case ColDistanceText:
		c.DistanceText = value
	case ColDistanceValue:
		c.DistanceValue = ParseNullInt(value)
	case ColMode:
		c.Mode = TravelMode(value)
	default:
		if c.Extra == nil {
			c.Extra = make(map[string]string)
		}
		c.Extra[column] = value
	}
}
