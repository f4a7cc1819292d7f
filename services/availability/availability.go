package availability

import (
	"context"
	"fmt"
	"sort"
	"time"

	bookingRepo "fieldserve/database/repository/booking"
	"fieldserve/models"
)

// Resolver returns a technician's existing committed time windows for a date
// range. Bookings are fetched once per technician per request; the engine
// never asks per candidate.
type Resolver interface {
	Bookings(ctx context.Context, technicianID string, from, to time.Time) ([]models.Booking, error)
}

// DefaultResolver is the case-store backed implementation.
type DefaultResolver struct {
	Repo bookingRepo.BookingRepository
}

func (r *DefaultResolver) Bookings(ctx context.Context, technicianID string, from, to time.Time) ([]models.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bookings, err := r.Repo.GetForTechnician(technicianID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve availability for technician %s: %w", technicianID, err)
	}
	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].Start.Before(bookings[j].Start)
	})
	return bookings, nil
}
