// Package location resolves the last known position of the device behind a
// permission gate.
package location

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/denysvitali/ev-nearby/event"
	"github.com/denysvitali/ev-nearby/evmap"
	"github.com/denysvitali/ev-nearby/interaction"
	"github.com/denysvitali/ev-nearby/loop"
)

var log = logrus.StandardLogger()

// Reading is the most recent successful position lookup.
type Reading struct {
	Point  evmap.GeoPoint
	Source string
	ReadAt time.Time
}

// PermissionResult is emitted when a permission interaction completes.
type PermissionResult struct {
	Token   interaction.Token
	Outcome PermissionOutcome
}

// Provider performs one-shot, permission-gated position lookups. All methods
// must be called on the event loop.
type Provider struct {
	ctx        context.Context
	loop       *loop.Loop
	source     Source
	permission Permission

	last              *Reading
	pendingPermission interaction.Token

	// PermissionResults fires once per completed permission interaction. A
	// granted outcome does not resume the lookup: subscribers re-invoke
	// RequestLastKnownPosition themselves.
	PermissionResults event.Emitter[PermissionResult]
}

func NewProvider(ctx context.Context, l *loop.Loop, source Source, permission Permission) *Provider {
	return &Provider{
		ctx:        ctx,
		loop:       l,
		source:     source,
		permission: permission,
	}
}

// RequestLastKnownPosition calls onSuccess once with a fresh reading. Nothing
// is called when the permission is missing (a permission interaction is
// launched instead), when the source has no fix, or when the lookup fails.
func (p *Provider) RequestLastKnownPosition(onSuccess func(Reading)) {
	if !p.permission.Granted() {
		p.requestPermission()
		return
	}

	sourceName := p.source.Name()
	interaction.Launch(p.ctx, p.loop, lastKnown(p.source), struct{}{}, func(res interaction.Result[*evmap.GeoPoint]) {
		if res.Err != nil {
			log.Warnf("unable to get last known position from %s: %v", sourceName, res.Err)
			return
		}
		if res.Value == nil {
			log.Debugf("%s has no position fix", sourceName)
			return
		}

		reading := Reading{
			Point:  *res.Value,
			Source: sourceName,
			ReadAt: time.Now(),
		}
		p.last = &reading
		log.Debugf("last known position %s (from %s)", reading.Point, sourceName)

		if onSuccess != nil {
			onSuccess(reading)
		}
	})
}

// Current returns the last successful reading, if any
func (p *Provider) Current() (Reading, bool) {
	if p.last == nil {
		return Reading{}, false
	}
	return *p.last, true
}

func (p *Provider) requestPermission() {
	if p.pendingPermission != "" {
		log.Debugf("permission request %s already pending", p.pendingPermission)
		return
	}

	p.pendingPermission = interaction.Launch(p.ctx, p.loop, askPermission(p.permission), struct{}{},
		func(res interaction.Result[PermissionOutcome]) {
			if res.Token != p.pendingPermission {
				log.Debugf("dropping stale permission result %s", res.Token)
				return
			}
			p.pendingPermission = ""

			outcome := res.Value
			if res.Err != nil {
				log.Errorf("permission request failed: %v", res.Err)
				outcome = Denied
			}
			if outcome == Denied {
				log.Warn("Location permission is denied, please allow the permission")
			}
			p.PermissionResults.Emit(PermissionResult{Token: res.Token, Outcome: outcome})
		})
}

func lastKnown(source Source) interaction.Func[struct{}, *evmap.GeoPoint] {
	return func(ctx context.Context, _ struct{}) (*evmap.GeoPoint, error) {
		return source.LastKnown(ctx)
	}
}

func askPermission(permission Permission) interaction.Func[struct{}, PermissionOutcome] {
	return func(ctx context.Context, _ struct{}) (PermissionOutcome, error) {
		return permission.Request(ctx)
	}
}
