package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/denysvitali/ev-nearby/evmap"
	"github.com/denysvitali/ev-nearby/loop"
	"github.com/denysvitali/ev-nearby/markers"
	"github.com/denysvitali/ev-nearby/places"
)

const timeout = time.Second

type pickReply struct {
	outcome places.Outcome
	err     error
}

type fakePicker struct {
	mu       sync.Mutex
	requests []places.Request
	replies  chan pickReply
}

func newFakePicker() *fakePicker {
	return &fakePicker{replies: make(chan pickReply, 4)}
}

func (f *fakePicker) Pick(ctx context.Context, req places.Request) (places.Outcome, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	select {
	case r := <-f.replies:
		return r.outcome, r.err
	case <-ctx.Done():
		return places.Outcome{}, ctx.Err()
	}
}

func (f *fakePicker) Requests() []places.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]places.Request(nil), f.requests...)
}

type fetchReply struct {
	sites []evmap.GeoPoint
	err   error
}

// fakeFetcher blocks every lookup until the test releases it through the gate
// of its center.
type fakeFetcher struct {
	calls chan evmap.GeoPoint
	gates map[evmap.GeoPoint]chan fetchReply
	limit int
	mu    sync.Mutex
}

func newFakeFetcher(centers ...evmap.GeoPoint) *fakeFetcher {
	f := &fakeFetcher{
		calls: make(chan evmap.GeoPoint, 8),
		gates: make(map[evmap.GeoPoint]chan fetchReply),
	}
	for _, c := range centers {
		f.gates[c] = make(chan fetchReply, 1)
	}
	return f
}

func (f *fakeFetcher) FetchNearby(ctx context.Context, center evmap.GeoPoint, limit int) ([]evmap.GeoPoint, error) {
	f.mu.Lock()
	f.limit = limit
	f.mu.Unlock()

	f.calls <- center
	select {
	case r := <-f.gates[center]:
		return r.sites, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *fakeFetcher) release(center evmap.GeoPoint, sites []evmap.GeoPoint, err error) {
	f.gates[center] <- fetchReply{sites: sites, err: err}
}

// recorder collects emitted events in the order the loop delivered them.
type recorder struct {
	mu      sync.Mutex
	events  []string
	results []Result
	fails   []Failure
	idle    chan struct{}
}

func record(c *Coordinator) *recorder {
	r := &recorder{idle: make(chan struct{}, 8)}
	c.Loading.Subscribe(func(LoadingStarted) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.events = append(r.events, "loading")
	})
	c.Results.Subscribe(func(res Result) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.events = append(r.events, "result:"+res.Place.Name)
		r.results = append(r.results, res)
	})
	c.Failures.Subscribe(func(f Failure) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.events = append(r.events, "failure:"+f.Place.Name)
		r.fails = append(r.fails, f)
	})
	c.States.Subscribe(func(s StateChange) {
		if s.To == Idle {
			r.idle <- struct{}{}
		}
	})
	return r
}

func (r *recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recorder) waitIdle(t *testing.T) {
	t.Helper()
	select {
	case <-r.idle:
	case <-time.After(timeout):
		t.Fatal("coordinator did not return to idle")
	}
}

func waitCall(t *testing.T, f *fakeFetcher) evmap.GeoPoint {
	t.Helper()
	select {
	case c := <-f.calls:
		return c
	case <-time.After(timeout):
		t.Fatal("fetcher was not called")
		return evmap.GeoPoint{}
	}
}

func setup(t *testing.T) (context.Context, *loop.Loop) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	l := loop.New()
	require.NoError(t, l.Start(ctx))
	t.Cleanup(func() {
		cancel()
		l.Stop()
	})
	return ctx, l
}

func selection(name string, p evmap.GeoPoint) evmap.PlaceSelection {
	return evmap.PlaceSelection{
		ID:                name,
		Name:              name,
		Location:          p,
		AddressComponents: []evmap.AddressComponent{{Name: name}},
	}
}

var (
	centerX = evmap.NewGeoPoint(37.7749, -122.4194)
	centerY = evmap.NewGeoPoint(47.3769, 8.5417)
	siteA   = evmap.NewGeoPoint(37.7750, -122.4190)
	siteB   = evmap.NewGeoPoint(37.7760, -122.4180)
	siteC   = evmap.NewGeoPoint(47.3770, 8.5420)
)

func TestCoordinator_SearchCycle(t *testing.T) {
	ctx, l := setup(t)
	picker := newFakePicker()
	fetcher := newFakeFetcher(centerX)
	c := New(ctx, l, picker, fetcher, WithLimit(10))
	rec := record(c)

	picker.replies <- pickReply{outcome: places.Selected(selection("X", centerX))}
	require.True(t, c.StartSearch())

	assert.Equal(t, centerX, waitCall(t, fetcher))
	require.NoError(t, l.Do(ctx, func() {
		assert.Equal(t, Loading, c.State())
		assert.Equal(t, 1, c.PendingFetches())
	}))
	assert.Equal(t, []string{"loading"}, rec.Events(), "loading must be notified before the lookup")

	fetcher.release(centerX, []evmap.GeoPoint{siteA, siteB}, nil)
	rec.waitIdle(t)

	assert.Equal(t, []string{"loading", "result:X"}, rec.Events())
	require.Len(t, rec.results, 1)
	assert.Equal(t, []evmap.GeoPoint{siteA, siteB}, rec.results[0].Sites)
	assert.Equal(t, 10, fetcher.limit)

	reqs := picker.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, places.SearchFields, reqs[0].Fields)

	require.NoError(t, l.Do(ctx, func() {
		assert.Equal(t, Idle, c.State())
		assert.Equal(t, 0, c.PendingFetches())
	}))
}

func TestCoordinator_CancelledPickerIsSilent(t *testing.T) {
	ctx, l := setup(t)
	picker := newFakePicker()
	c := New(ctx, l, picker, newFakeFetcher())
	rec := record(c)

	picker.replies <- pickReply{outcome: places.Cancelled("user closed the picker")}
	require.True(t, c.Search("Zürich"))
	rec.waitIdle(t)

	assert.Empty(t, rec.Events())
	assert.Equal(t, "Zürich", picker.Requests()[0].Query)
}

func TestCoordinator_PickerErrorIsSilent(t *testing.T) {
	ctx, l := setup(t)
	picker := newFakePicker()
	c := New(ctx, l, picker, newFakeFetcher())
	rec := record(c)

	picker.replies <- pickReply{err: errors.New("terminal closed")}
	require.True(t, c.StartSearch())
	rec.waitIdle(t)

	assert.Empty(t, rec.Events())
}

func TestCoordinator_FetchFailure(t *testing.T) {
	ctx, l := setup(t)
	picker := newFakePicker()
	fetcher := newFakeFetcher(centerX)
	c := New(ctx, l, picker, fetcher)
	rec := record(c)

	picker.replies <- pickReply{outcome: places.Selected(selection("X", centerX))}
	require.True(t, c.StartSearch())
	waitCall(t, fetcher)
	fetcher.release(centerX, nil, errors.New("connection reset"))
	rec.waitIdle(t)

	assert.Equal(t, []string{"loading", "failure:X"}, rec.Events(), "a failed lookup must not notify result observers")
	require.Len(t, rec.fails, 1)
	assert.EqualError(t, rec.fails[0].Err, "connection reset")
}

func TestCoordinator_IgnoresSearchWhilePickerOpen(t *testing.T) {
	ctx, l := setup(t)
	picker := newFakePicker()
	c := New(ctx, l, picker, newFakeFetcher())
	rec := record(c)

	require.True(t, c.StartSearch())
	require.True(t, c.StartSearch())
	require.NoError(t, l.Do(ctx, func() {
		assert.Equal(t, AwaitingSelection, c.State())
	}))

	picker.replies <- pickReply{outcome: places.Cancelled("closed")}
	rec.waitIdle(t)
	assert.Len(t, picker.Requests(), 1)
}

// runOverlapping starts a search for X, then one for Y while X is still
// loading, and completes Y before X.
func runOverlapping(t *testing.T, opts ...Option) (*recorder, *markers.MemorySurface) {
	t.Helper()
	ctx, l := setup(t)
	picker := newFakePicker()
	fetcher := newFakeFetcher(centerX, centerY)
	c := New(ctx, l, picker, fetcher, opts...)
	rec := record(c)

	surface := markers.NewMemorySurface()
	store := markers.NewStore(surface)
	c.Results.Subscribe(func(r Result) {
		store.SetSearched(r.Place.Label(), r.Place.Location)
		store.ReplaceSites(r.Sites)
	})

	picker.replies <- pickReply{outcome: places.Selected(selection("X", centerX))}
	require.True(t, c.StartSearch())
	waitCall(t, fetcher)

	picker.replies <- pickReply{outcome: places.Selected(selection("Y", centerY))}
	require.True(t, c.StartSearch())
	waitCall(t, fetcher)

	require.NoError(t, l.Do(ctx, func() {
		assert.Equal(t, Loading, c.State())
		assert.Equal(t, 2, c.PendingFetches())
	}))

	fetcher.release(centerY, []evmap.GeoPoint{siteC}, nil)
	require.Eventually(t, func() bool {
		var pending int
		_ = l.Do(ctx, func() { pending = c.PendingFetches() })
		return pending == 1
	}, timeout, 5*time.Millisecond)

	fetcher.release(centerX, []evmap.GeoPoint{siteA, siteB}, nil)
	rec.waitIdle(t)
	return rec, surface
}

func TestCoordinator_OverlappingSearchesLastCompletedWins(t *testing.T) {
	rec, surface := runOverlapping(t)

	assert.Equal(t, []string{"loading", "loading", "result:Y", "result:X"}, rec.Events())

	var sites []evmap.GeoPoint
	for _, m := range surface.Markers() {
		if m.Category == markers.EVSite {
			sites = append(sites, m.Point)
		}
	}
	assert.Equal(t, []evmap.GeoPoint{siteA, siteB}, sites, "the stale lookup for X overwrites Y")
}

func TestCoordinator_LatestOnlyDropsSupersededLookups(t *testing.T) {
	rec, surface := runOverlapping(t, WithLatestOnly())

	assert.Equal(t, []string{"loading", "loading", "result:Y"}, rec.Events())

	var sites []evmap.GeoPoint
	for _, m := range surface.Markers() {
		if m.Category == markers.EVSite {
			sites = append(sites, m.Point)
		}
	}
	assert.Equal(t, []evmap.GeoPoint{siteC}, sites)
}
