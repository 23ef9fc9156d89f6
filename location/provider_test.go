package location

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
)

type fakeSource struct {
	mu     sync.Mutex
	points []*evmap.GeoPoint
	err    error
	calls  int
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) LastKnown(context.Context) (*evmap.GeoPoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.points) == 0 {
		return nil, nil
	}
	p := f.points[0]
	f.points = f.points[1:]
	return p, nil
}

func (f *fakeSource) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakePermission struct {
	mu       sync.Mutex
	granted  bool
	outcome  PermissionOutcome
	err      error
	requests int
	release  chan struct{}
}

func (f *fakePermission) Granted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.granted
}

func (f *fakePermission) Request(context.Context) (PermissionOutcome, error) {
	f.mu.Lock()
	f.requests++
	release := f.release
	f.mu.Unlock()
	if release != nil {
		<-release
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.outcome == Granted && f.err == nil {
		f.granted = true
	}
	return f.outcome, f.err
}

func (f *fakePermission) Requests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

func point(lat, lon float64) *evmap.GeoPoint {
	p := evmap.NewGeoPoint(lat, lon)
	return &p
}

func startLoop(t *testing.T) *loop.Loop {
	t.Helper()
	l := loop.New()
	require.NoError(t, l.Start(context.Background()))
	t.Cleanup(l.Stop)
	return l
}

// settle waits until every interaction launched so far has posted back.
func settle(t *testing.T, l *loop.Loop) {
	t.Helper()
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, l.Do(context.Background(), func() {}))
}

func TestProvider_RequestLastKnownPosition(t *testing.T) {
	l := startLoop(t)
	source := &fakeSource{points: []*evmap.GeoPoint{point(47.3769, 8.5417)}}
	p := NewProvider(context.Background(), l, source, StaticPermission(true))

	readings := make(chan Reading, 2)
	require.NoError(t, l.Do(context.Background(), func() {
		p.RequestLastKnownPosition(func(r Reading) { readings <- r })
	}))

	select {
	case r := <-readings:
		assert.Equal(t, evmap.NewGeoPoint(47.3769, 8.5417), r.Point)
		assert.Equal(t, "fake", r.Source)
	case <-time.After(time.Second):
		t.Fatal("onSuccess was not called")
	}

	settle(t, l)
	assert.Len(t, readings, 0, "onSuccess must be called exactly once")

	var current Reading
	var ok bool
	require.NoError(t, l.Do(context.Background(), func() { current, ok = p.Current() }))
	assert.True(t, ok)
	assert.Equal(t, evmap.NewGeoPoint(47.3769, 8.5417), current.Point)
}

func TestProvider_NewestReadingWins(t *testing.T) {
	l := startLoop(t)
	source := &fakeSource{points: []*evmap.GeoPoint{point(1, 1), point(2, 2)}}
	p := NewProvider(context.Background(), l, source, StaticPermission(true))

	readings := make(chan Reading, 2)
	for i := 0; i < 2; i++ {
		require.NoError(t, l.Do(context.Background(), func() {
			p.RequestLastKnownPosition(func(r Reading) { readings <- r })
		}))
		select {
		case <-readings:
		case <-time.After(time.Second):
			t.Fatal("onSuccess was not called")
		}
	}

	var current Reading
	require.NoError(t, l.Do(context.Background(), func() { current, _ = p.Current() }))
	assert.Equal(t, evmap.NewGeoPoint(2, 2), current.Point)
}

func TestProvider_NoFixIsSilent(t *testing.T) {
	l := startLoop(t)
	source := &fakeSource{}
	p := NewProvider(context.Background(), l, source, StaticPermission(true))

	called := false
	require.NoError(t, l.Do(context.Background(), func() {
		p.RequestLastKnownPosition(func(Reading) { called = true })
	}))
	settle(t, l)

	assert.Equal(t, 1, source.Calls())
	require.NoError(t, l.Do(context.Background(), func() {
		assert.False(t, called)
		_, ok := p.Current()
		assert.False(t, ok)
	}))
}

func TestProvider_SourceErrorIsSilent(t *testing.T) {
	l := startLoop(t)
	source := &fakeSource{err: errors.New("gps unavailable")}
	p := NewProvider(context.Background(), l, source, StaticPermission(true))

	called := false
	require.NoError(t, l.Do(context.Background(), func() {
		p.RequestLastKnownPosition(func(Reading) { called = true })
	}))
	settle(t, l)

	require.NoError(t, l.Do(context.Background(), func() {
		assert.False(t, called)
	}))
}

func TestProvider_PermissionDenied(t *testing.T) {
	l := startLoop(t)
	source := &fakeSource{points: []*evmap.GeoPoint{point(1, 1)}}
	perm := &fakePermission{outcome: Denied}
	p := NewProvider(context.Background(), l, source, perm)

	results := make(chan PermissionResult, 1)
	p.PermissionResults.Subscribe(func(r PermissionResult) { results <- r })

	called := false
	require.NoError(t, l.Do(context.Background(), func() {
		p.RequestLastKnownPosition(func(Reading) { called = true })
	}))

	select {
	case r := <-results:
		assert.Equal(t, Denied, r.Outcome)
		assert.NotEmpty(t, r.Token)
	case <-time.After(time.Second):
		t.Fatal("permission result not emitted")
	}
	settle(t, l)

	assert.Equal(t, 0, source.Calls(), "the source must not be queried without permission")
	require.NoError(t, l.Do(context.Background(), func() {
		assert.False(t, called)
		_, ok := p.Current()
		assert.False(t, ok)
	}))
}

func TestProvider_PermissionGrantedNeedsReinvocation(t *testing.T) {
	l := startLoop(t)
	source := &fakeSource{points: []*evmap.GeoPoint{point(3, 3)}}
	perm := &fakePermission{outcome: Granted}
	p := NewProvider(context.Background(), l, source, perm)

	readings := make(chan Reading, 1)
	onSuccess := func(r Reading) { readings <- r }

	granted := make(chan struct{}, 1)
	p.PermissionResults.Subscribe(func(r PermissionResult) {
		if r.Outcome == Granted {
			granted <- struct{}{}
		}
	})

	require.NoError(t, l.Do(context.Background(), func() {
		p.RequestLastKnownPosition(onSuccess)
	}))
	select {
	case <-granted:
	case <-time.After(time.Second):
		t.Fatal("permission was not granted")
	}
	settle(t, l)

	// No automatic continuation after the grant
	assert.Equal(t, 0, source.Calls())
	assert.Len(t, readings, 0)

	require.NoError(t, l.Do(context.Background(), func() {
		p.RequestLastKnownPosition(onSuccess)
	}))
	select {
	case r := <-readings:
		assert.Equal(t, evmap.NewGeoPoint(3, 3), r.Point)
	case <-time.After(time.Second):
		t.Fatal("onSuccess was not called after re-invocation")
	}
}

func TestProvider_SinglePendingPermissionRequest(t *testing.T) {
	l := startLoop(t)
	release := make(chan struct{})
	perm := &fakePermission{outcome: Denied, release: release}
	p := NewProvider(context.Background(), l, &fakeSource{}, perm)

	results := make(chan PermissionResult, 3)
	p.PermissionResults.Subscribe(func(r PermissionResult) { results <- r })

	for i := 0; i < 3; i++ {
		require.NoError(t, l.Do(context.Background(), func() {
			p.RequestLastKnownPosition(nil)
		}))
	}
	close(release)

	select {
	case <-results:
	case <-time.After(time.Second):
		t.Fatal("permission result not emitted")
	}
	settle(t, l)
	assert.Equal(t, 1, perm.Requests())
	assert.Len(t, results, 0)
}

func TestProvider_PermissionErrorCountsAsDenied(t *testing.T) {
	l := startLoop(t)
	perm := &fakePermission{outcome: Granted, err: errors.New("no terminal")}
	p := NewProvider(context.Background(), l, &fakeSource{}, perm)

	results := make(chan PermissionResult, 1)
	p.PermissionResults.Subscribe(func(r PermissionResult) { results <- r })

	require.NoError(t, l.Do(context.Background(), func() {
		p.RequestLastKnownPosition(nil)
	}))
	select {
	case r := <-results:
		assert.Equal(t, Denied, r.Outcome)
	case <-time.After(time.Second):
		t.Fatal("permission result not emitted")
	}
}
