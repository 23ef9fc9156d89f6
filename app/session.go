// Package app connects the position lookups and search cycles to the map
// markers.
package app

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/denysvitali/ev-nearby/event"
	"github.com/denysvitali/ev-nearby/evmap"
	"github.com/denysvitali/ev-nearby/location"
	"github.com/denysvitali/ev-nearby/loop"
	"github.com/denysvitali/ev-nearby/markers"
	"github.com/denysvitali/ev-nearby/search"
)

var log = logrus.StandardLogger()

// CityZoom is the camera zoom used when panning to a place.
const CityZoom = 12

type Option func(*Session)

func WithZoom(zoom float64) Option {
	return func(s *Session) {
		if zoom > 0 {
			s.zoom = zoom
		}
	}
}

// Session shows the device position and the outcome of every search cycle
// on a marker store.
type Session struct {
	loop        *loop.Loop
	provider    *location.Provider
	coordinator *search.Coordinator
	store       *markers.Store
	zoom        float64

	loading bool

	// Located fires after the current-location marker moved to a new reading.
	Located event.Emitter[location.Reading]

	permissionSub event.Subscription
	loadingSub    event.Subscription
	resultSub     event.Subscription
	failureSub    event.Subscription
}

func NewSession(l *loop.Loop, provider *location.Provider, coordinator *search.Coordinator, store *markers.Store, opts ...Option) *Session {
	s := &Session{
		loop:        l,
		provider:    provider,
		coordinator: coordinator,
		store:       store,
		zoom:        CityZoom,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.permissionSub = provider.PermissionResults.Subscribe(s.onPermission)
	s.loadingSub = coordinator.Loading.Subscribe(func(search.LoadingStarted) { s.loading = true })
	s.resultSub = coordinator.Results.Subscribe(s.showResult)
	s.failureSub = coordinator.Failures.Subscribe(func(search.Failure) { s.loading = false })
	return s
}

// Close detaches the session from the provider and the coordinator.
func (s *Session) Close() {
	s.provider.PermissionResults.Unsubscribe(s.permissionSub)
	s.coordinator.Loading.Unsubscribe(s.loadingSub)
	s.coordinator.Results.Unsubscribe(s.resultSub)
	s.coordinator.Failures.Unsubscribe(s.failureSub)
}

// LocateMe asks for the device position and moves the current-location
// marker there.
func (s *Session) LocateMe() bool {
	return s.loop.Post(s.locate)
}

// Search starts a search cycle for query.
func (s *Session) Search(query string) bool {
	return s.coordinator.Search(query)
}

// View runs fn on the event loop with the marker store.
func (s *Session) View(ctx context.Context, fn func(store *markers.Store)) error {
	return s.loop.Do(ctx, func() { fn(s.store) })
}

// Loading reports whether a lookup started by the last selection is running.
// Must be called on the event loop.
func (s *Session) Loading() bool {
	return s.loading
}

// SiteAt returns the position of the EV site marker drawn under h. Must be
// called on the event loop.
func (s *Session) SiteAt(h markers.Handle) (evmap.GeoPoint, bool) {
	e, ok := s.store.Lookup(h)
	if !ok || e.Category != markers.EVSite {
		return evmap.GeoPoint{}, false
	}
	return e.Point, true
}

func (s *Session) locate() {
	s.provider.RequestLastKnownPosition(s.showReading)
}

func (s *Session) onPermission(r location.PermissionResult) {
	if r.Outcome != location.Granted {
		return
	}
	log.Debug("location permission granted, locating again")
	s.locate()
}

func (s *Session) showReading(r location.Reading) {
	s.store.SetCurrent(r.Point)
	s.store.PanTo(r.Point, s.zoom)
	s.Located.Emit(r)
}

func (s *Session) showResult(r search.Result) {
	s.loading = false
	s.store.SetSearched(r.Place.Label(), r.Place.Location)
	s.store.ReplaceSites(r.Sites)
	s.store.PanTo(r.Place.Location, s.zoom)
}
