package watch

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/spf13/cobra"

	"github.com/denysvitali/ev-nearby/cmd/root"
	"github.com/denysvitali/ev-nearby/evmap"
	"github.com/denysvitali/ev-nearby/location"
	"github.com/denysvitali/ev-nearby/places"
	"github.com/denysvitali/ev-nearby/search"
)

var (
	cronSchedule string
	nearby       bool
)

var WatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Track your position on a schedule",
	Long: `Look up your position on a cron schedule and print it whenever it changes.
With --nearby, the EV chargers around each new position are listed as well.`,
	Example: `  # Every 5 minutes, with the chargers around you
  ev-nearby watch --cron "*/5 * * * *" --nearby`,
	RunE: runWatch,
}

func init() {
	WatchCmd.Flags().StringVar(&cronSchedule, "cron", "*/5 * * * *", "Cron schedule (default: every 5 minutes)")
	WatchCmd.Flags().BoolVar(&nearby, "nearby", false, "list the EV chargers around each new position")
	root.RootCmd.AddCommand(WatchCmd)
}

// positionPicker selects the last position seen by the watcher.
type positionPicker struct {
	mu   sync.Mutex
	last *evmap.GeoPoint
}

func (p *positionPicker) set(point evmap.GeoPoint) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.last = &point
}

func (p *positionPicker) Pick(context.Context, places.Request) (places.Outcome, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last == nil {
		return places.Cancelled("no position yet"), nil
	}
	return places.Selected(evmap.PlaceSelection{
		ID:                "current",
		Name:              "My Location",
		Location:          *p.last,
		AddressComponents: []evmap.AddressComponent{{Name: "My Location"}},
	}), nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	log := root.GetLogger()
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	picker := &positionPicker{}
	rt, err := root.NewRuntime(ctx, picker, search.WithLatestOnly())
	if err != nil {
		return err
	}
	defer rt.Close()

	var previous *evmap.GeoPoint
	rt.Session.Located.Subscribe(func(r location.Reading) {
		if previous != nil && *previous == r.Point {
			log.Debugf("position unchanged at %s", r.Point)
			return
		}
		moved := "-"
		if previous != nil {
			moved = fmt.Sprintf("%.2f km", previous.DistanceKm(r.Point))
		}
		p := r.Point
		previous = &p
		fmt.Printf("%s  %s  (moved %s, from %s)\n", r.ReadAt.Format(time.DateTime), r.Point, moved, r.Source)

		if nearby {
			picker.set(r.Point)
			rt.Session.Search("")
		}
	})
	rt.Coordinator.Results.Subscribe(func(res search.Result) {
		fmt.Println(root.MarkerTable(rt.Store.Sites(), &res.Place.Location))
	})

	s, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	defer func() { _ = s.Shutdown() }()

	_, err = s.NewJob(
		gocron.CronJob(cronSchedule, false),
		gocron.NewTask(func() {
			if !rt.Session.LocateMe() {
				log.Error("event loop stopped, cannot locate")
			}
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}

	fmt.Printf("Watching position with cron: %s\n", cronSchedule)
	fmt.Println("Press Ctrl+C to stop")
	s.Start()

	<-ctx.Done()
	fmt.Println("\nShutting down scheduler...")
	return nil
}

var _ places.Picker = (*positionPicker)(nil)
