// Package geo provides coordinate validation and great-circle distance.
package geo

import "math"

// EarthRadiusKM is the mean Earth radius used for haversine distances.
const EarthRadiusKM = 6371.0

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Lat float64
	Lng float64
}

// Valid reports whether p lies within [-90,90] x [-180,180].
func (p Point) Valid() bool {
	return IsValidCoordinates(p.Lat, p.Lng)
}

func IsValidCoordinates(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// DistanceKM returns the haversine distance between a and b.
func DistanceKM(a, b Point) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(a.Lat))*math.Cos(toRadians(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)

	return EarthRadiusKM * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Bounds is an axis-aligned lat/lng box.
type Bounds struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// BoundingBox returns a box that contains every point within radiusKM of
// center. Longitude spans the full range near the poles.
func BoundingBox(center Point, radiusKM float64) Bounds {
	dLat := radiusKM / EarthRadiusKM * 180 / math.Pi
	b := Bounds{
		MinLat: math.Max(center.Lat-dLat, -90),
		MaxLat: math.Min(center.Lat+dLat, 90),
		MinLng: -180,
		MaxLng: 180,
	}

	cosLat := math.Cos(toRadians(center.Lat))
	if cosLat > 1e-6 && b.MinLat > -90 && b.MaxLat < 90 {
		dLng := dLat / cosLat
		// Boxes crossing the antimeridian keep the full longitude range.
		if minLng, maxLng := center.Lng-dLng, center.Lng+dLng; minLng >= -180 && maxLng <= 180 {
			b.MinLng = minLng
			b.MaxLng = maxLng
		}
	}
	return b
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
