package search

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/denysvitali/ev-nearby/cmd/root"
	"github.com/denysvitali/ev-nearby/markers"
	placesearch "github.com/denysvitali/ev-nearby/search"
)

var (
	latestOnly     bool
	nonInteractive bool
	showPosition   bool
)

var SearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Find EV chargers around a place",
	Long: `Search for a place and list the EV charging sites around it.

Without a query the place is asked for on the terminal. When several places
match, you pick one from the list.`,
	Example: `  # Search interactively
  ev-nearby search

  # Chargers around Zürich main station, best match only
  ev-nearby search --first "Zürich HB"`,
	RunE: runSearch,
}

func init() {
	SearchCmd.Flags().BoolVar(&latestOnly, "latest-only", false, "ignore lookups superseded by a newer search")
	SearchCmd.Flags().BoolVar(&nonInteractive, "first", false, "use the best match without asking")
	SearchCmd.Flags().BoolVar(&showPosition, "locate", false, "also show your current position")

	root.RootCmd.AddCommand(SearchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	query := strings.Join(args, " ")
	if nonInteractive && query == "" {
		return fmt.Errorf("a query is required with --first")
	}

	var opts []placesearch.Option
	if latestOnly {
		opts = append(opts, placesearch.WithLatestOnly())
	}

	rt, err := root.NewRuntime(ctx, root.NewPicker(!nonInteractive), opts...)
	if err != nil {
		return err
	}
	defer rt.Close()

	done := make(chan struct{})
	var once sync.Once
	var failure error
	rt.Coordinator.Loading.Subscribe(func(placesearch.LoadingStarted) {
		fmt.Fprintln(os.Stderr, "Searching for EV chargers...")
	})
	rt.Coordinator.Failures.Subscribe(func(f placesearch.Failure) {
		failure = f.Err
	})
	rt.Coordinator.States.Subscribe(func(s placesearch.StateChange) {
		if s.To == placesearch.Idle {
			once.Do(func() { close(done) })
		}
	})

	if showPosition {
		rt.Session.LocateMe()
	}
	if !rt.Session.Search(query) {
		return fmt.Errorf("event loop is not running")
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
	}

	return printResult(ctx, rt, failure)
}

func printResult(ctx context.Context, rt *root.Runtime, failure error) error {
	var (
		searched markers.Entry
		found    bool
		entries  []markers.Entry
		sites    int
	)
	err := rt.Session.View(ctx, func(store *markers.Store) {
		searched, found = store.Searched()
		if cur, ok := store.Current(); ok {
			entries = append(entries, cur)
		}
		if found {
			entries = append(entries, searched)
		}
		sites = len(store.Sites())
		entries = append(entries, store.Sites()...)
	})
	if err != nil {
		return err
	}

	if failure != nil {
		return fmt.Errorf("unable to fetch EV chargers: %w", failure)
	}
	if !found {
		fmt.Println("No place selected.")
		return nil
	}

	fmt.Printf("Search: %s\n", searched.Title)
	if sites == 0 {
		fmt.Println("No EV chargers found.")
	}
	fmt.Println(root.MarkerTable(entries, &searched.Point))
	return nil
}
