// Package prompt asks the user questions on a terminal. It backs the
// interactive place picker and the location permission dialog.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/denysvitali/ev-nearby/evmap"
	"github.com/denysvitali/ev-nearby/location"
	"github.com/denysvitali/ev-nearby/places"
)

var questionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))

// Terminal reads answers line by line. Only one question is asked at a time.
type Terminal struct {
	mu  sync.Mutex
	in  *bufio.Reader
	out io.Writer
}

func New(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// Ask prints question and returns the trimmed answer.
func (t *Terminal) Ask(ctx context.Context, question string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := fmt.Fprint(t.out, questionStyle.Render(question)+" "); err != nil {
		return "", err
	}

	type answer struct {
		line string
		err  error
	}
	answers := make(chan answer, 1)
	go func() {
		line, err := t.in.ReadString('\n')
		answers <- answer{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case a := <-answers:
		// A final line without newline is still an answer
		if a.err != nil && !(errors.Is(a.err, io.EOF) && a.line != "") {
			return "", a.err
		}
		return strings.TrimSpace(a.line), nil
	}
}

// Confirm asks a yes/no question. Anything but "y" or "yes" is a no.
func (t *Terminal) Confirm(ctx context.Context, question string) (bool, error) {
	ans, err := t.Ask(ctx, question+" [y/N]")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(ans) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func (t *Terminal) Query(ctx context.Context) (string, error) {
	return t.Ask(ctx, "Search for a place:")
}

// Choose lists the candidates and asks for a 1-based index. An empty answer
// cancels the selection.
func (t *Terminal) Choose(ctx context.Context, candidates []evmap.PlaceSelection) (int, bool, error) {
	if _, err := fmt.Fprintln(t.out, candidateTable(candidates)); err != nil {
		return 0, false, err
	}

	for {
		ans, err := t.Ask(ctx, fmt.Sprintf("Select a place [1-%d, empty to cancel]:", len(candidates)))
		if err != nil {
			return 0, false, err
		}
		if ans == "" {
			return 0, false, nil
		}
		n, err := strconv.Atoi(ans)
		if err != nil || n < 1 || n > len(candidates) {
			_, _ = fmt.Fprintf(t.out, "%q is not a valid choice\n", ans)
			continue
		}
		return n - 1, true, nil
	}
}

func candidateTable(candidates []evmap.PlaceSelection) *table.Table {
	rows := make([][]string, 0, len(candidates))
	for i, c := range candidates {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			c.Label(),
			c.Name,
			c.Location.String(),
		})
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		Headers("#", "PLACE", "NAME", "LOCATION").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).PaddingLeft(1).PaddingRight(1)
			}
			return lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1)
		}).
		Rows(rows...)
}

var (
	_ places.Chooser     = (*Terminal)(nil)
	_ location.Confirmer = (*Terminal)(nil)
)
