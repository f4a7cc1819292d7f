package geo

import (
	"context"
	"errors"

	"fieldserve/models"
)

// ErrUnavailable is returned when a provider lookup fails or times out. It is
// distinct from a real zero-minute answer, which is a valid result.
var ErrUnavailable = errors.New("geo: estimate unavailable")

// ErrNotFound is returned when a provider resolves the request but has no
// answer (unknown address, no route, unknown vehicle).
var ErrNotFound = errors.New("geo: not found")

// Geocoder resolves a street address to a coordinate.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (models.Coordinate, error)
}

// TravelEstimator returns an estimated drive duration in minutes between two
// coordinates.
type TravelEstimator interface {
	TravelTime(ctx context.Context, origin, dest models.Coordinate) (int, error)
}

// VehicleLocator returns a technician vehicle's live position.
type VehicleLocator interface {
	Position(ctx context.Context, vehicleID string) (*models.VehiclePosition, error)
}
