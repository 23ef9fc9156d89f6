package evmap

// AddressComponent is one part of a resolved place address, e.g. the city or the road.
type AddressComponent struct {
	Name  string   `json:"name"`
	Types []string `json:"types"`
}

// PlaceSelection is what the place picker resolves to. It is produced once per
// picker invocation and never modified afterwards.
type PlaceSelection struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	Location          GeoPoint           `json:"location"`
	AddressComponents []AddressComponent `json:"address_components"`
}

// Label returns the name used for the searched marker: the first address
// component, falling back to the display name.
func (p PlaceSelection) Label() string {
	if len(p.AddressComponents) > 0 && p.AddressComponents[0].Name != "" {
		return p.AddressComponents[0].Name
	}
	return p.Name
}

// ChargerSite is a charging location. Only Location is set by the nearby search,
// the remaining fields are filled when a single site is resolved.
type ChargerSite struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Address     string   `json:"address"`
	Points      int      `json:"points"`
	Cost        float64  `json:"cost"`
	Location    GeoPoint `json:"location"`
}
