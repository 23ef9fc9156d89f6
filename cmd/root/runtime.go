package root

import (
	"context"
	"fmt"
	"os"

	"github.com/denysvitali/ev-nearby/app"
	"github.com/denysvitali/ev-nearby/config"
	"github.com/denysvitali/ev-nearby/location"
	"github.com/denysvitali/ev-nearby/loop"
	"github.com/denysvitali/ev-nearby/markers"
	"github.com/denysvitali/ev-nearby/ocm"
	"github.com/denysvitali/ev-nearby/places"
	"github.com/denysvitali/ev-nearby/prompt"
	"github.com/denysvitali/ev-nearby/search"
	"github.com/denysvitali/ev-nearby/teslamateapi"
)

// Runtime is a running session with everything it is built from.
type Runtime struct {
	Loop        *loop.Loop
	Surface     *markers.MemorySurface
	Store       *markers.Store
	Provider    *location.Provider
	Coordinator *search.Coordinator
	Session     *app.Session
	Directory   *ocm.Client
}

// NewRuntime starts an event loop and builds a session on top of it. The
// picker may be nil for commands that never search.
func NewRuntime(ctx context.Context, picker places.Picker, opts ...search.Option) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}

	directory, err := NewDirectory()
	if err != nil {
		return nil, err
	}
	source, err := NewLocationSource()
	if err != nil {
		return nil, err
	}
	if picker == nil {
		picker = places.PickerFunc(func(context.Context, places.Request) (places.Outcome, error) {
			return places.Cancelled("no place picker"), nil
		})
	}

	l := loop.New()
	if err := l.Start(ctx); err != nil {
		return nil, fmt.Errorf("unable to start event loop: %w", err)
	}

	opts = append([]search.Option{search.WithLimit(cfg.OpenChargeMap.MaxResults)}, opts...)

	r := &Runtime{
		Loop:      l,
		Surface:   markers.NewMemorySurface(),
		Directory: directory,
	}
	r.Store = markers.NewStore(r.Surface)
	r.Provider = location.NewProvider(ctx, l, source, NewPermission())
	r.Coordinator = search.New(ctx, l, picker, directory, opts...)
	r.Session = app.NewSession(l, r.Provider, r.Coordinator, r.Store, app.WithZoom(cfg.Map.Zoom))
	return r, nil
}

func (r *Runtime) Close() {
	r.Session.Close()
	r.Loop.Stop()
}

// NewDirectory creates the Open Charge Map client.
func NewDirectory() (*ocm.Client, error) {
	client, err := ocm.New(cfg.OpenChargeMap.APIKey, ocm.WithBaseURL(cfg.OpenChargeMap.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("unable to create Open Charge Map client (set openchargemap.api_key): %w", err)
	}
	return client, nil
}

// NewPicker creates the Nominatim place picker. Without a terminal it picks
// the best match for the query.
func NewPicker(interactive bool) places.Picker {
	nominatim := places.NewNominatim(cfg.Nominatim.BaseURL, cfg.Nominatim.CountryCodes)
	if !interactive {
		return places.NewNominatimPicker(nominatim, cfg.Nominatim.Limit, nil)
	}
	return places.NewNominatimPicker(nominatim, cfg.Nominatim.Limit, Terminal())
}

// NewLocationSource creates the position source selected by location.source.
func NewLocationSource() (location.Source, error) {
	switch cfg.Location.Source {
	case config.SourceStatic:
		return location.NewStaticSource(cfg.Location.Latitude, cfg.Location.Longitude), nil
	case config.SourceTeslaMate:
		api, err := teslamateapi.New(cfg.TeslaMate.APIURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create TeslaMate API client: %w", err)
		}
		if cfg.TeslaMate.CarID <= 0 {
			return nil, fmt.Errorf("teslamate.car_id is not set")
		}
		return location.NewTeslaMateSource(api, cfg.TeslaMate.CarID), nil
	default:
		return nil, fmt.Errorf("unknown location source %q", cfg.Location.Source)
	}
}

// NewPermission asks on the terminal unless location.allowed is set, and
// saves a grant back to the configuration file.
func NewPermission() location.Permission {
	return location.NewPromptPermission(
		cfg.Location.Allowed,
		"Allow ev-nearby to use your location?",
		Terminal(),
		func() error {
			cfg.Location.Allowed = true
			return config.SaveConfig(cfg, GetConfigPath())
		},
	)
}

var terminal *prompt.Terminal

// Terminal returns the prompt shared by every question asked on stdin.
func Terminal() *prompt.Terminal {
	if terminal == nil {
		terminal = prompt.New(os.Stdin, os.Stderr)
	}
	return terminal
}
