// Package geo provides straight-line distance math for the proximity
// matcher and the check-in geofence.
package geo

import "math"

const earthRadiusMeters = 6371000.0

// Distance returns the haversine distance in meters between two coordinates.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// WithinMeters reports whether two coordinates are at most radius meters apart.
func WithinMeters(lat1, lng1, lat2, lng2, radius float64) bool {
	return Distance(lat1, lng1, lat2, lng2) <= radius
}
