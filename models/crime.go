package models

// CrimeRecord is one row of the optional crime table. The feed has no fixed
// schema, so cells are kept by column name.
type CrimeRecord map[string]string

func (c CrimeRecord) Field(column string) string {
	return c[column]
}

// CrimeStats summarises incidents around a point.
type CrimeStats struct {
	TotalCrimes int
	// CrimeRate is incidents per 1000 estimated residents.
	CrimeRate  float64
	CrimeTypes map[string]int
}
