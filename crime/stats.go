package crime

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"realestate-compare/models"
)

const (
	earthRadiusM     = 6371000.0
	kmPerDegree      = 111.0
	residentsPerSqKm = 2000.0
	unknownCrimeType = "Unknown"
	latitudeColumn   = "latitude"
	longitudeColumn  = "longitude"
)

// CountByYear counts incidents whose reported year equals year.
func CountByYear(incidents []Incident, year int) int {
	n := 0
	for _, inc := range incidents {
		if y, ok := reportedYear(inc.Properties); ok && y == year {
			n++
		}
	}
	return n
}

// CrimesNear returns incidents within radiusKm of (lat, lon). Incidents
// without a point are never near anything.
func CrimesNear(incidents []Incident, lat, lon, radiusKm float64) []Incident {
	latDelta := radiusKm / kmPerDegree
	lonDelta := radiusKm / (kmPerDegree * math.Abs(math.Cos(lat*math.Pi/180)))
	radiusM := radiusKm * 1000

	var out []Incident
	for _, inc := range incidents {
		if !inc.Point {
			continue
		}
		if math.Abs(inc.Lat-lat) > latDelta || math.Abs(inc.Lon-lon) > lonDelta {
			continue
		}
		if Haversine(lat, lon, inc.Lat, inc.Lon) <= radiusM {
			out = append(out, inc)
		}
	}
	return out
}

// StatsByArea summarises incidents within radiusKm of (lat, lon). The rate is
// per 1000 residents, assuming a flat urban density.
func StatsByArea(incidents []Incident, lat, lon, radiusKm float64) models.CrimeStats {
	near := CrimesNear(incidents, lat, lon, radiusKm)

	stats := models.CrimeStats{
		TotalCrimes: len(near),
		CrimeTypes:  make(map[string]int),
	}
	for _, inc := range near {
		stats.CrimeTypes[crimeType(inc.Properties)]++
	}

	population := math.Pi * radiusKm * radiusKm * residentsPerSqKm
	if population > 0 {
		stats.CrimeRate = float64(stats.TotalCrimes) / population * 1000
	}
	return stats
}

// Haversine is the great-circle distance between two points, in meters.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return earthRadiusM * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// Table flattens incident properties into a crime table. Columns are the
// sorted union of property names followed by latitude and longitude.
func Table(incidents []Incident) *models.Table[models.CrimeRecord] {
	keys := map[string]struct{}{}
	for _, inc := range incidents {
		for k := range inc.Properties {
			if k == latitudeColumn || k == longitudeColumn {
				continue
			}
			keys[k] = struct{}{}
		}
	}
	columns := make([]string, 0, len(keys)+2)
	for k := range keys {
		columns = append(columns, k)
	}
	sort.Strings(columns)
	columns = append(columns, latitudeColumn, longitudeColumn)

	rows := make([]models.CrimeRecord, 0, len(incidents))
	for _, inc := range incidents {
		rec := models.CrimeRecord{}
		for k, v := range inc.Properties {
			rec[k] = stringify(v)
		}
		if inc.Point {
			rec[latitudeColumn] = strconv.FormatFloat(inc.Lat, 'f', -1, 64)
			rec[longitudeColumn] = strconv.FormatFloat(inc.Lon, 'f', -1, 64)
		} else {
			rec[latitudeColumn], rec[longitudeColumn] = "", ""
		}
		rows = append(rows, rec)
	}
	return models.NewTable(columns, rows)
}

func reportedYear(props map[string]any) (int, bool) {
	for _, key := range []string{"reported_year", "Year"} {
		v, ok := props[key]
		if !ok || v == nil {
			continue
		}
		switch y := v.(type) {
		case float64:
			return int(y), true
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(y))
			if err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

func crimeType(props map[string]any) string {
	for _, key := range []string{"offense_code", "CrimeType"} {
		if s := stringify(props[key]); s != "" {
			return s
		}
	}
	return unknownCrimeType
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}
