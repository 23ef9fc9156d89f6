package location

import (
	"context"
	"fmt"

	"github.com/denysvitali/ev-nearby/evmap"
	"github.com/denysvitali/ev-nearby/teslamateapi"
)

// Source returns the last known position of the device, or nil when it never
// had a fix.
type Source interface {
	Name() string
	LastKnown(ctx context.Context) (*evmap.GeoPoint, error)
}

// StaticSource reports a configured position.
type StaticSource struct {
	point *evmap.GeoPoint
}

// NewStaticSource returns a source for a configured latitude/longitude. The
// zero coordinate means "not configured" and yields a source without a fix.
func NewStaticSource(lat, lon float64) *StaticSource {
	if lat == 0 && lon == 0 {
		return &StaticSource{}
	}
	p := evmap.NewGeoPoint(lat, lon)
	return &StaticSource{point: &p}
}

func (s *StaticSource) Name() string {
	return "static"
}

func (s *StaticSource) LastKnown(context.Context) (*evmap.GeoPoint, error) {
	if s.point == nil {
		return nil, nil
	}
	p := *s.point
	return &p, nil
}

// CarStatusGetter is the part of the TeslaMate client the car source needs.
type CarStatusGetter interface {
	GetCarStatus(ctx context.Context, carID int) (*teslamateapi.CarStatusResponse, error)
}

// TeslaMateSource uses the last reported position of a car tracked by TeslaMate.
type TeslaMateSource struct {
	api   CarStatusGetter
	carID int
}

func NewTeslaMateSource(api CarStatusGetter, carID int) *TeslaMateSource {
	return &TeslaMateSource{api: api, carID: carID}
}

func (s *TeslaMateSource) Name() string {
	return fmt.Sprintf("teslamate car %d", s.carID)
}

func (s *TeslaMateSource) LastKnown(ctx context.Context) (*evmap.GeoPoint, error) {
	status, err := s.api.GetCarStatus(ctx, s.carID)
	if err != nil {
		return nil, fmt.Errorf("failed to get car status: %w", err)
	}

	geodata := status.Status.CarGeodata
	if geodata.Latitude == 0 && geodata.Longitude == 0 {
		return nil, nil
	}
	p := evmap.NewGeoPoint(geodata.Latitude, geodata.Longitude)
	return &p, nil
}

var (
	_ Source = (*StaticSource)(nil)
	_ Source = (*TeslaMateSource)(nil)
)
