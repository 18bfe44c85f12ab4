// Package distance computes great-circle distances between coordinates.
package distance

import "math"

// EarthRadiusMiles is the mean Earth radius used by the haversine formula.
const EarthRadiusMiles = 3959.0

// Unknown is the distance used when the user location is not known yet. It
// falls outside every proximity bucket.
var Unknown = math.Inf(1)

// Miles returns the haversine distance in miles between two points given in
// degrees. Identical points yield 0.
func Miles(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	// rounding can push a just past 1 for near-antipodal points
	a = math.Min(1, math.Max(0, a))
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMiles * c
}

func toRad(degrees float64) float64 {
	return degrees * (math.Pi / 180)
}
