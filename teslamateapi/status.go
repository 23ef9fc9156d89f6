package teslamateapi

import (
	"time"
)

type GeoData struct {
	Geofence  string  `json:"geofence"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Car struct {
	CarID   int    `json:"car_id"`
	CarName string `json:"car_name"`
}

// CarStatus is the subset of the TeslaMate status the position lookup reads.
type CarStatus struct {
	CarGeodata  GeoData   `json:"car_geodata"`
	DisplayName string    `json:"display_name"`
	State       string    `json:"state"`
	StateSince  time.Time `json:"state_since"`
}

type CarStatusResponse struct {
	Car    Car       `json:"car"`
	Status CarStatus `json:"status"`
}

type genericResponse[T any] struct {
	Data T `json:"data"`
}
