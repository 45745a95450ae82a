package geo

import "math"

// Coordinate is a WGS84 latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Latitude  float64
	Longitude float64
}

const earthRadiusMeters = 6371000

// Distance returns the great-circle (haversine) distance between two
// coordinates in meters.
func Distance(a, b Coordinate) float64 {
	dLat := (b.Latitude - a.Latitude) * (math.Pi / 180.0)
	dLon := (b.Longitude - a.Longitude) * (math.Pi / 180.0)

	latARad := a.Latitude * (math.Pi / 180.0)
	latBRad := b.Latitude * (math.Pi / 180.0)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(latARad)*math.Cos(latBRad)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

// WithinFence reports whether a distance falls inside a circular geofence.
// A distance exactly equal to the radius counts as inside.
func WithinFence(distanceMeters, radiusMeters float64) bool {
	return distanceMeters <= radiusMeters
}
