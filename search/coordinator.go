// Package search runs place search cycles: the user picks a place, the
// charger directory is queried around it and the result is published.
//
// A cycle moves the coordinator from Idle to AwaitingSelection while the
// picker is open, then to Loading while the directory lookup is in flight,
// and back to Idle once it completes. A cancelled picker goes straight back
// to Idle without notifying anybody.
package search

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/denysvitali/ev-nearby/event"
	"github.com/denysvitali/ev-nearby/evmap"
	"github.com/denysvitali/ev-nearby/interaction"
	"github.com/denysvitali/ev-nearby/loop"
	"github.com/denysvitali/ev-nearby/places"
)

var log = logrus.StandardLogger()

const DefaultLimit = 10

type State int

const (
	Idle State = iota
	AwaitingSelection
	Loading
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingSelection:
		return "awaiting_selection"
	case Loading:
		return "loading"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// LoadingStarted is emitted when a place was selected and its lookup is about to start.
type LoadingStarted struct{}

// Result is emitted when the chargers around a selected place are known.
type Result struct {
	Place evmap.PlaceSelection
	Sites []evmap.GeoPoint
}

// Failure is emitted when the lookup for a selected place fails.
type Failure struct {
	Place evmap.PlaceSelection
	Err   error
}

type StateChange struct {
	From State
	To   State
}

// Fetcher looks up charger sites around a point.
type Fetcher interface {
	FetchNearby(ctx context.Context, center evmap.GeoPoint, limit int) ([]evmap.GeoPoint, error)
}

type Option func(*Coordinator)

// WithLimit sets the maximum number of sites requested per lookup.
func WithLimit(limit int) Option {
	return func(c *Coordinator) {
		if limit > 0 {
			c.limit = limit
		}
	}
}

// WithLatestOnly makes the coordinator drop the outcome of a lookup when a
// newer one has been started since. By default the lookup that completes last
// wins, whichever search it belongs to.
func WithLatestOnly() Option {
	return func(c *Coordinator) {
		c.latestOnly = true
	}
}

// Coordinator runs search cycles on an event loop. Apart from StartSearch
// and Search, its methods must be called on the loop.
type Coordinator struct {
	ctx        context.Context
	loop       *loop.Loop
	picker     places.Picker
	fetcher    Fetcher
	limit      int
	latestOnly bool

	state          State
	pendingPick    interaction.Token
	pendingFetches int
	generation     uint64

	Loading  event.Emitter[LoadingStarted]
	Results  event.Emitter[Result]
	Failures event.Emitter[Failure]
	States   event.Emitter[StateChange]
}

func New(ctx context.Context, l *loop.Loop, picker places.Picker, fetcher Fetcher, opts ...Option) *Coordinator {
	c := &Coordinator{
		ctx:     ctx,
		loop:    l,
		picker:  picker,
		fetcher: fetcher,
		limit:   DefaultLimit,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StartSearch opens the place picker. It returns false if the event loop
// is no longer running.
func (c *Coordinator) StartSearch() bool {
	return c.Search("")
}

// Search opens the place picker pre-filled with query.
func (c *Coordinator) Search(query string) bool {
	return c.loop.Post(func() { c.startSearch(query) })
}

func (c *Coordinator) State() State {
	return c.state
}

// PendingFetches returns the number of directory lookups in flight.
func (c *Coordinator) PendingFetches() int {
	return c.pendingFetches
}

func (c *Coordinator) startSearch(query string) {
	if c.state == AwaitingSelection {
		log.Warnf("place picker %s is already open, ignoring search", c.pendingPick)
		return
	}
	if c.pendingFetches > 0 {
		log.Debugf("starting a search while %d lookups are in flight", c.pendingFetches)
	}

	c.setState(AwaitingSelection)
	req := places.Request{Fields: places.SearchFields, Query: query}
	c.pendingPick = interaction.Launch(c.ctx, c.loop, pick(c.picker), req, c.onPicked)
}

func (c *Coordinator) onPicked(res interaction.Result[places.Outcome]) {
	if res.Token != c.pendingPick {
		log.Debugf("dropping stale picker result %s", res.Token)
		return
	}
	c.pendingPick = ""

	if res.Err != nil {
		log.Errorf("place picker failed: %v", res.Err)
		c.settle()
		return
	}

	outcome := res.Value
	if outcome.Status != places.StatusSelected {
		log.Errorf("place search %s: %s", outcome.Status, outcome.StatusMessage)
		c.settle()
		return
	}

	place := outcome.Place
	log.Infof("Place: %s, %s", place.Name, place.ID)

	c.setState(Loading)
	c.Loading.Emit(LoadingStarted{})
	c.fetch(place)
}

func (c *Coordinator) fetch(place evmap.PlaceSelection) {
	c.generation++
	generation := c.generation
	c.pendingFetches++

	interaction.Launch(c.ctx, c.loop, fetchNearby(c.fetcher, c.limit), place.Location,
		func(res interaction.Result[[]evmap.GeoPoint]) {
			c.pendingFetches--
			defer c.settle()

			if c.latestOnly && generation != c.generation {
				log.Debugf("dropping outcome of superseded lookup for %s", place.Name)
				return
			}

			if res.Err != nil {
				log.Errorf("unable to fetch EV chargers near %s: %v", place.Location, res.Err)
				c.Failures.Emit(Failure{Place: place, Err: res.Err})
				return
			}

			log.Infof("%d EV chargers found", len(res.Value))
			c.Results.Emit(Result{Place: place, Sites: res.Value})
		})
}

// settle returns to Idle unless a picker is open or a lookup is still running.
func (c *Coordinator) settle() {
	switch {
	case c.pendingPick != "":
		c.setState(AwaitingSelection)
	case c.pendingFetches > 0:
		c.setState(Loading)
	default:
		c.setState(Idle)
	}
}

func (c *Coordinator) setState(s State) {
	if s == c.state {
		return
	}
	change := StateChange{From: c.state, To: s}
	c.state = s
	log.Debugf("search state %s -> %s", change.From, change.To)
	c.States.Emit(change)
}

func pick(p places.Picker) interaction.Func[places.Request, places.Outcome] {
	return func(ctx context.Context, req places.Request) (places.Outcome, error) {
		return p.Pick(ctx, req)
	}
}

func fetchNearby(f Fetcher, limit int) interaction.Func[evmap.GeoPoint, []evmap.GeoPoint] {
	return func(ctx context.Context, center evmap.GeoPoint) ([]evmap.GeoPoint, error) {
		return f.FetchNearby(ctx, center, limit)
	}
}
