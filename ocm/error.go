package ocm

import "errors"

var (
	ErrNoSites      = errors.New("no charger found for the given location")
	ErrInvalidPoint = errors.New("invalid coordinate")
)
