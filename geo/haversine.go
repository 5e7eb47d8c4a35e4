// Package geo holds the great-circle distance used everywhere a distance is
// shown or sorted on. Km and KmSQL are the same formula; keep them in step.
package geo

import (
	"fmt"
	"math"
)

// EarthRadiusKm is the mean Earth radius.
const EarthRadiusKm = 6371.0

type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether p lies within latitude/longitude bounds.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Km returns the haversine distance between a and b in kilometres.
func Km(a, b Point) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLng := radians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKm * c
}

// KmSQL renders Km as a PostgreSQL expression over the given latitude and
// longitude columns. The origin is bound through ? placeholders; use
// KmSQLArgs to build them.
func KmSQL(latCol, lngCol string) string {
	a := fmt.Sprintf(
		"POWER(SIN(RADIANS(%[1]s - ?) / 2), 2) + COS(RADIANS(?)) * COS(RADIANS(%[1]s)) * POWER(SIN(RADIANS(%[2]s - ?) / 2), 2)",
		latCol, lngCol,
	)
	// LEAST guards sqrt(1-a) against a drifting a hair above 1.
	return fmt.Sprintf("%g * 2 * ATAN2(SQRT(LEAST(%[2]s, 1)), SQRT(1 - LEAST(%[2]s, 1)))", EarthRadiusKm, a)
}

// KmSQLArgs returns the placeholder arguments for KmSQL. The expression
// references a twice, so the origin is bound twice.
func KmSQLArgs(origin Point) []interface{} {
	one := []interface{}{origin.Lat, origin.Lat, origin.Lng}
	return append(one, one...)
}
