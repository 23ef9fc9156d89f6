package places

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/denysvitali/ev-nearby/evmap"
)

// Chooser is the user-facing half of an interactive picker.
type Chooser interface {
	// Query asks for a search text. An empty answer cancels the interaction.
	Query(ctx context.Context) (string, error)
	// Choose asks which candidate to use. ok is false when the user cancels.
	Choose(ctx context.Context, candidates []evmap.PlaceSelection) (index int, ok bool, err error)
}

// NominatimPicker resolves a place through Nominatim. Without a Chooser it is
// non-interactive and selects the best match for the request query.
type NominatimPicker struct {
	search  *Nominatim
	chooser Chooser
	limit   int
}

func NewNominatimPicker(search *Nominatim, limit int, chooser Chooser) *NominatimPicker {
	if limit <= 0 {
		limit = 5
	}
	return &NominatimPicker{
		search:  search,
		chooser: chooser,
		limit:   limit,
	}
}

func (p *NominatimPicker) Pick(ctx context.Context, req Request) (Outcome, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		if p.chooser == nil {
			return Cancelled("no search query"), nil
		}
		q, err := p.chooser.Query(ctx)
		if err != nil {
			return Outcome{}, err
		}
		query = strings.TrimSpace(q)
		if query == "" {
			return Cancelled("search cancelled"), nil
		}
	}

	candidates, err := p.search.Search(ctx, query, p.limit, req.Fields)
	if err != nil {
		if errors.Is(err, ErrNoCandidates) {
			return Cancelled(err.Error()), nil
		}
		return Outcome{}, err
	}

	if p.chooser == nil || len(candidates) == 1 {
		return Selected(candidates[0]), nil
	}

	idx, ok, err := p.chooser.Choose(ctx, candidates)
	if err != nil {
		return Outcome{}, err
	}
	if !ok {
		return Cancelled("selection cancelled"), nil
	}
	if idx < 0 || idx >= len(candidates) {
		return Cancelled(fmt.Sprintf("invalid selection %d", idx+1)), nil
	}
	return Selected(candidates[idx]), nil
}

var _ Picker = (*NominatimPicker)(nil)
