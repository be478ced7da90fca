package service

import "math"

const earthRadiusKm = 6371.0

// Location is a WGS84 coordinate pair.
type Location struct {
	Lat float64 `json:"latitude"`
	Lng float64 `json:"longitude"`
}

// Valid reports whether the coordinates are in range.
func (l Location) Valid() bool {
	return l.Lat >= -90 && l.Lat <= 90 && l.Lng >= -180 && l.Lng <= 180
}

// DeliveryZone is a circle around the restaurant.
type DeliveryZone struct {
	Center   Location
	RadiusKm float64
}

// DistanceKm is the great-circle distance from the zone center.
func (z DeliveryZone) DistanceKm(l Location) float64 {
	return haversineKm(z.Center, l)
}

func (z DeliveryZone) Contains(l Location) bool {
	return z.DistanceKm(l) <= z.RadiusKm
}

func haversineKm(a, b Location) float64 {
	toRad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}
