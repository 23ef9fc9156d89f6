package locate

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/denysvitali/ev-nearby/cmd/root"
	"github.com/denysvitali/ev-nearby/location"
)

var timeout time.Duration

var LocateCmd = &cobra.Command{
	Use:   "locate",
	Short: "Show your current position",
	Long: `Resolve your last known position from the configured location source
(a static position or your car in TeslaMate).

The first time, you are asked to allow access to your location. The answer is
saved in the configuration file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		rt, err := root.NewRuntime(ctx, nil)
		if err != nil {
			return err
		}
		defer rt.Close()

		readings := make(chan location.Reading, 1)
		denied := make(chan struct{}, 1)
		rt.Session.Located.Subscribe(func(r location.Reading) {
			select {
			case readings <- r:
			default:
			}
		})
		rt.Provider.PermissionResults.Subscribe(func(r location.PermissionResult) {
			if r.Outcome == location.Denied {
				select {
				case denied <- struct{}{}:
				default:
				}
			}
		})

		if !rt.Session.LocateMe() {
			return fmt.Errorf("event loop is not running")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-denied:
			return fmt.Errorf("location permission denied")
		case <-time.After(timeout):
			fmt.Println("No position available.")
			return nil
		case r := <-readings:
			fmt.Println(root.KeyValueTable([][]string{
				{"Source", r.Source},
				{"Latitude", fmt.Sprintf("%.6f", r.Point.Latitude)},
				{"Longitude", fmt.Sprintf("%.6f", r.Point.Longitude)},
				{"Read at", r.ReadAt.Format(time.RFC3339)},
			}))
			return nil
		}
	},
}

func init() {
	LocateCmd.Flags().DurationVar(&timeout, "timeout", 15*time.Second, "how long to wait for a position")
	root.RootCmd.AddCommand(LocateCmd)
}
