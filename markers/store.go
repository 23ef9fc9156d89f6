package markers

import (
	"github.com/sirupsen/logrus"

	"github.com/denysvitali/ev-nearby/evmap"
)

var log = logrus.StandardLogger()

// slot holds at most one marker.
type slot struct {
	entry *Entry
}

func (s *slot) replace(surface Surface, next *Marker) {
	if s.entry != nil {
		surface.RemoveMarker(s.entry.Handle)
		s.entry = nil
	}
	if next != nil {
		s.entry = &Entry{Marker: *next, Handle: surface.AddMarker(*next)}
	}
}

func (s *slot) get() (Entry, bool) {
	if s.entry == nil {
		return Entry{}, false
	}
	return *s.entry, true
}

// set holds any number of markers, replaced as a whole.
type set struct {
	entries []Entry
}

func (s *set) replace(surface Surface, next []Marker) {
	for _, e := range s.entries {
		surface.RemoveMarker(e.Handle)
	}
	s.entries = nil

	for _, m := range next {
		s.entries = append(s.entries, Entry{Marker: m, Handle: surface.AddMarker(m)})
	}
}

// Store owns the markers of every category. It is not safe for concurrent
// use; it is meant to be driven from the event loop.
type Store struct {
	surface Surface
	styles  map[Category]Style

	current  slot
	searched slot
	sites    set
}

func NewStore(surface Surface) *Store {
	styles := make(map[Category]Style, len(DefaultStyles))
	for c, s := range DefaultStyles {
		styles[c] = s
	}
	return &Store{surface: surface, styles: styles}
}

// SetStyle changes the style used for markers of category c added from now on.
func (s *Store) SetStyle(c Category, style Style) {
	s.styles[c] = style
}

func (s *Store) Style(c Category) Style {
	return s.styles[c]
}

// SetCurrent replaces the current-location marker.
func (s *Store) SetCurrent(point evmap.GeoPoint) {
	m := s.marker(Current, "", point)
	s.current.replace(s.surface, &m)
}

// SetSearched replaces the searched-location marker.
func (s *Store) SetSearched(label string, point evmap.GeoPoint) {
	m := s.marker(Searched, label, point)
	s.searched.replace(s.surface, &m)
}

// ReplaceSites removes every EV site marker, then adds one per point.
func (s *Store) ReplaceSites(points []evmap.GeoPoint) {
	next := make([]Marker, 0, len(points))
	for _, p := range points {
		next = append(next, s.marker(EVSite, "", p))
	}
	s.sites.replace(s.surface, next)
	log.Debugf("showing %d EV site markers", len(next))
}

func (s *Store) PanTo(point evmap.GeoPoint, zoom float64) {
	s.surface.AnimateCamera(point, zoom)
}

func (s *Store) ClearCurrent() {
	s.current.replace(s.surface, nil)
}

func (s *Store) ClearSearched() {
	s.searched.replace(s.surface, nil)
}

func (s *Store) ClearSites() {
	s.sites.replace(s.surface, nil)
}

func (s *Store) Current() (Entry, bool) {
	return s.current.get()
}

func (s *Store) Searched() (Entry, bool) {
	return s.searched.get()
}

// Sites returns the EV site markers in the order they were added.
func (s *Store) Sites() []Entry {
	out := make([]Entry, len(s.sites.entries))
	copy(out, s.sites.entries)
	return out
}

// Lookup finds the marker drawn under handle h.
func (s *Store) Lookup(h Handle) (Entry, bool) {
	if e, ok := s.current.get(); ok && e.Handle == h {
		return e, true
	}
	if e, ok := s.searched.get(); ok && e.Handle == h {
		return e, true
	}
	for _, e := range s.sites.entries {
		if e.Handle == h {
			return e, true
		}
	}
	return Entry{}, false
}

func (s *Store) marker(c Category, title string, point evmap.GeoPoint) Marker {
	style := s.styles[c]
	if title == "" {
		title = style.Title
	}
	return Marker{Category: c, Point: point, Title: title, Style: style}
}
