// Package markers keeps the map markers of the three marker categories in
// sync with a rendering surface.
//
// The current-location and searched-location categories hold at most one
// marker, the EV site category holds a set. Each category is changed only by
// replacing its content: the previous markers are removed from the surface
// before the new ones are added.
package markers

import (
	"fmt"

	"github.com/denysvitali/ev-nearby/evmap"
)

type Category int

const (
	Current Category = iota
	Searched
	EVSite
)

func (c Category) String() string {
	switch c {
	case Current:
		return "current"
	case Searched:
		return "searched"
	case EVSite:
		return "ev_site"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

// Style is the visual appearance of a marker.
type Style struct {
	// Title is used when the marker has no label of its own.
	Title string
	Icon  string
	// Color is a lipgloss color used by terminal renderers.
	Color string
}

// DefaultStyles are the styles a new Store starts with.
var DefaultStyles = map[Category]Style{
	Current:  {Title: "My Location", Icon: "current_location", Color: "39"},
	Searched: {Icon: "searched_location", Color: "212"},
	EVSite:   {Title: "EV charger", Icon: "ev_location", Color: "42"},
}

// Handle identifies a marker on a Surface. The zero Handle is never issued.
type Handle uint64

// Marker is what gets drawn.
type Marker struct {
	Category Category
	Point    evmap.GeoPoint
	Title    string
	Style    Style
}

// Entry is a marker that has been added to the surface.
type Entry struct {
	Marker
	Handle Handle
}

// Surface is the map the markers are drawn on. Calls must not block.
type Surface interface {
	AddMarker(m Marker) Handle
	RemoveMarker(h Handle)
	AnimateCamera(point evmap.GeoPoint, zoom float64)
}
