package domain

import "math"

// EarthRadiusMeters is the mean radius of the spherical earth approximation.
const EarthRadiusMeters = 6371000.0

// Point is a WGS84 coordinate pair in degrees.
type Point struct {
	Lat float64
	Lng float64
}

// Valid checks that the coordinates are in range.
func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// DistanceTo returns the haversine great-circle distance in meters.
func (p Point) DistanceTo(q Point) float64 {
	lat1 := toRadians(p.Lat)
	lat2 := toRadians(q.Lat)
	dLat := lat2 - lat1
	dLng := toRadians(q.Lng - p.Lng)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusMeters * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
