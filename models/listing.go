package models

// Listing column names.
const (
	ColAddress      = "address"
	ColPrice        = "price"
	ColBedrooms     = "bedrooms"
	ColBathrooms    = "bathrooms"
	ColYearBuilt    = "year_built"
	ColSquareFeet   = "square_feet"
	ColPropertyTax  = "property_tax"
	ColMLSNumber    = "mls_number"
	ColNeighborhood = "neighborhood"
)

// ListingFallbackColumns is the schema of an empty listings table substituted
// when the listings source cannot be read.
var ListingFallbackColumns = []string{
	ColAddress, ColPrice, ColYearBuilt, ColSquareFeet, ColPropertyTax,
}

// ListingColumns is the full schema written by the scrapers and the sample generator.
var ListingColumns = []string{
	ColAddress, ColPrice, ColBedrooms, ColBathrooms, ColSquareFeet,
	ColYearBuilt, ColPropertyTax, ColMLSNumber, ColNeighborhood,
}

// Listing is one real-estate listing. Every field except Address may be absent.
type Listing struct {
	Address      string
	Price        NullInt
	Bedrooms     NullInt
	Bathrooms    NullInt
	YearBuilt    NullInt
	SquareFeet   Area
	PropertyTax  NullInt
	MLSNumber    string
	Neighborhood string

	// Extra holds columns the source carried that are not part of the schema.
	Extra map[string]string
}

// Field renders a column value; unknown columns come from Extra.
func (l Listing) Field(column string) string {
	switch column {
	case ColAddress:
		return l.Address
	case ColPrice:
		return l.Price.String()
	case ColBedrooms:
		return l.Bedrooms.String()
	case ColBathrooms:
		return l.Bathrooms.String()
	case ColYearBuilt:
		return l.YearBuilt.String()
	case ColSquareFeet:
		return l.SquareFeet.String()
	case ColPropertyTax:
		return l.PropertyTax.String()
	case ColMLSNumber:
		return l.MLSNumber
	case ColNeighborhood:
		return l.Neighborhood
	}
	return l.Extra[column]
}

// SetField assigns a raw CSV cell to the named column.
func (l *Listing) SetField(column, value string) {
	switch column {
	case ColAddress:
		l.Address = value
	case ColPrice:
		l.Price = ParseNullInt(value)
	case ColBedrooms:
		l.Bedrooms = ParseNullInt(value)
	case ColBathrooms:
		l.Bathrooms = ParseNullInt(value)
	case ColYearBuilt:
		l.YearBuilt = ParseNullInt(value)
	case ColSquareFeet:
		l.SquareFeet = ParseArea(value)
	case ColPropertyTax:
		l.PropertyTax = ParseNullInt(value)
	case ColMLSNumber:
		l.MLSNumber = value
	case ColNeighborhood:
		l.Neighborhood = value
	default:
		if l.Extra == nil {
			l.Extra = make(map[string]string)
		}
		l.Extra[column] = value
	}
}
