// Package places implements the place-picker interaction: the user searches
// for a place and either selects one candidate or cancels.
package places

import (
	"context"
	"fmt"

	"github.com/denysvitali/ev-nearby/evmap"
)

// Field is a piece of place data the picker is asked to resolve.
type Field string

const (
	FieldID                Field = "id"
	FieldLocation          Field = "location"
	FieldAddressComponents Field = "address_components"
)

// SearchFields is the field set requested by every search cycle
var SearchFields = []Field{FieldID, FieldLocation, FieldAddressComponents}

type Request struct {
	Fields []Field
	// Query pre-fills the search box. An empty query makes interactive pickers ask for one.
	Query string
}

func (r Request) Wants(f Field) bool {
	for _, field := range r.Fields {
		if field == f {
			return true
		}
	}
	return false
}

type Status int

const (
	StatusSelected Status = iota
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusSelected:
		return "selected"
	case StatusCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Outcome is the tagged result of one picker interaction.
type Outcome struct {
	Status        Status
	Place         evmap.PlaceSelection
	StatusMessage string
}

func Selected(place evmap.PlaceSelection) Outcome {
	return Outcome{Status: StatusSelected, Place: place}
}

func Cancelled(message string) Outcome {
	return Outcome{Status: StatusCancelled, StatusMessage: message}
}

type Picker interface {
	Pick(ctx context.Context, req Request) (Outcome, error)
}

// PickerFunc adapts a function to the Picker interface.
type PickerFunc func(ctx context.Context, req Request) (Outcome, error)

func (f PickerFunc) Pick(ctx context.Context, req Request) (Outcome, error) {
	return f(ctx, req)
}
