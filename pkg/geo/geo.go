package geo

import "math"

const earthRadiusKm = 6371.0

// DistanceKm is the great-circle distance between two points given in
// degrees.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	rad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := rad(lat2 - lat1)
	dLng := rad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// RangeRadiusKm maps a directory search range code (1-5) to its radius.
// Codes outside the table fall back to the 1km default the directory
// itself assumes.
func RangeRadiusKm(code int) float64 {
	switch code {
	case 1:
		return 0.3
	case 2:
		return 0.5
	case 3:
		return 1.0
	case 4:
		return 2.0
	case 5:
		return 3.0
	default:
		return 1.0
	}
}

// Closeness scores how deep inside the search radius a venue sits, from
// 0 (at or beyond the radius) to 100 (on the centroid).
func Closeness(distanceKm, radiusKm float64) float64 {
	if radiusKm <= 0 || distanceKm >= radiusKm {
		return 0
	}
	p := (1 - distanceKm/radiusKm) * 100
	if p > 100 {
		return 100
	}
	return p
}

// WalkLabel buckets a closeness score into the labels the lobby UI
// shows next to each candidate.
func WalkLabel(closeness float64) string {
	switch {
	case closeness >= 75:
		return "right there"
	case closeness >= 50:
		return "short walk"
	case closeness >= 25:
		return "a walk away"
	case closeness > 0:
		return "edge of range"
	default:
		return ""
	}
}
