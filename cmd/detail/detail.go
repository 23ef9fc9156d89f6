package detail

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/denysvitali/ev-nearby/cmd/root"
	"github.com/denysvitali/ev-nearby/evmap"
	"github.com/denysvitali/ev-nearby/ocm"
)

var (
	latitude  float64
	longitude float64
)

var DetailCmd = &cobra.Command{
	Use:   "detail",
	Short: "Show the details of a charging site",
	Long: `Show title, description, address, number of charging points and usage cost
of the charging site at the given position.`,
	Example: `  ev-nearby detail --lat 47.3779 --lon 8.5403`,
	RunE: func(cmd *cobra.Command, args []string) error {
		point := evmap.NewGeoPoint(latitude, longitude)
		if !point.Valid() {
			return fmt.Errorf("invalid position %s", point)
		}

		directory, err := root.NewDirectory()
		if err != nil {
			return err
		}

		site, err := directory.GetSite(cmd.Context(), point)
		if err != nil {
			if errors.Is(err, ocm.ErrNoSites) {
				fmt.Printf("No charging site at %s.\n", point)
				return nil
			}
			return fmt.Errorf("failed to get charging site: %w", err)
		}

		rows := [][]string{
			{"Title", site.Title},
			{"Description", site.Description},
			{"Address", site.Address},
			{"Points", fmt.Sprintf("%d", site.Points)},
			{"Cost", fmt.Sprintf("%.2f", site.Cost)},
			{"Position", site.Location.String()},
		}
		if key := root.GetConfig().Google.StreetViewKey; key != "" {
			rows = append(rows, []string{"Street View", ocm.StreetViewURL(site.Location, key)})
		}
		fmt.Println(root.KeyValueTable(rows))
		return nil
	},
}

func init() {
	DetailCmd.Flags().Float64Var(&latitude, "lat", 0, "latitude of the site (required)")
	DetailCmd.Flags().Float64Var(&longitude, "lon", 0, "longitude of the site (required)")
	_ = DetailCmd.MarkFlagRequired("lat")
	_ = DetailCmd.MarkFlagRequired("lon")

	root.RootCmd.AddCommand(DetailCmd)
}
