package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNullIntKeepsCellText(t *testing.T) {
	tests := []struct {
		raw   string
		want  int
		valid bool
	}{
		{"500000", 500000, true},
		{"$650,000", 650000, true},
		{"1.5", 2, true},
		{"4512.75", 4513, true},
		{"Contact agent", 0, false},
		{"N/A", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		n := ParseNullInt(tt.raw)
		assert.Equal(t, tt.valid, n.Valid, tt.raw)
		assert.Equal(t, tt.want, n.Int, tt.raw)
		assert.Equal(t, tt.raw, n.String(), "cell text of %q", tt.raw)
	}
}

func TestNullIntStringWithoutCellText(t *testing.T) {
	assert.Equal(t, "42", IntOf(42).String())
	assert.Equal(t, "", NullInt{}.String())
}

func TestListingFieldRoundTrip(t *testing.T) {
	var l Listing
	for col, v := range map[string]string{
		ColPrice:       "Contact agent",
		ColBathrooms:   "1.5",
		ColPropertyTax: "4512.75",
	} {
		l.SetField(col, v)
		assert.Equal(t, v, l.Field(col))
	}
}
