package evmap

import (
	"fmt"

	geo "github.com/kellydunn/golang-geo"
)

// GeoPoint is a WGS84 latitude/longitude pair in degrees.
type GeoPoint struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

func NewGeoPoint(lat, lon float64) GeoPoint {
	return GeoPoint{Latitude: lat, Longitude: lon}
}

// Valid reports whether the point lies inside the latitude/longitude ranges
func (p GeoPoint) Valid() bool {
	return p.Latitude >= -90 && p.Latitude <= 90 &&
		p.Longitude >= -180 && p.Longitude <= 180
}

// DistanceKm returns the great circle distance to other in kilometers
func (p GeoPoint) DistanceKm(other GeoPoint) float64 {
	return geo.NewPoint(p.Latitude, p.Longitude).
		GreatCircleDistance(geo.NewPoint(other.Latitude, other.Longitude))
}

func (p GeoPoint) String() string {
	return fmt.Sprintf("%.6f,%.6f", p.Latitude, p.Longitude)
}
