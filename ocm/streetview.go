package ocm

import (
	"fmt"
	"net/url"

	"github.com/denysvitali/ev-nearby/evmap"
)

const streetViewEndpoint = "https://maps.googleapis.com/maps/api/streetview"

// StreetViewURL builds the 600x400 Street View thumbnail URL for a site
func StreetViewURL(point evmap.GeoPoint, key string) string {
	params := url.Values{}
	params.Set("size", "600x400")
	params.Set("location", fmt.Sprintf("%v,%v", point.Latitude, point.Longitude))
	params.Set("key", key)
	return streetViewEndpoint + "?" + params.Encode()
}
