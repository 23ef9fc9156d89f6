package root

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/denysvitali/ev-nearby/evmap"
	"github.com/denysvitali/ev-nearby/markers"
)

// MarkerTable renders markers with their distance from origin.
func MarkerTable(entries []markers.Entry, origin *evmap.GeoPoint) *table.Table {
	var rows [][]string
	for _, e := range entries {
		distance := "-"
		if origin != nil {
			distance = fmt.Sprintf("%.2f km", origin.DistanceKm(e.Point))
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", e.Handle),
			lipgloss.NewStyle().Foreground(lipgloss.Color(e.Style.Color)).Render(e.Category.String()),
			e.Title,
			fmt.Sprintf("%.6f", e.Point.Latitude),
			fmt.Sprintf("%.6f", e.Point.Longitude),
			distance,
		})
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		Headers("#", "TYPE", "TITLE", "LATITUDE", "LONGITUDE", "DISTANCE").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).PaddingLeft(1).PaddingRight(1)
			}
			baseStyle := lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1)
			if col > 2 {
				return baseStyle.AlignHorizontal(lipgloss.Right)
			}
			return baseStyle
		}).
		Rows(rows...)
}

// KeyValueTable renders a two-column table without headers.
func KeyValueTable(rows [][]string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1)
			if col == 0 {
				return style.Bold(true)
			}
			return style
		}).
		Rows(rows...)
}
