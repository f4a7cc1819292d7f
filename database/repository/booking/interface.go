package bookingRepo

import (
	"time"

	"fieldserve/models"
)

// BookingRepository defines read access to committed bookings. The suggestion
// engine never writes through this interface.
type BookingRepository interface {
	// GetForTechnician returns a technician's bookings overlapping [from, to),
	// sorted by start time ascending.
	GetForTechnician(technicianID string, from, to time.Time) ([]models.Booking, error)
}
