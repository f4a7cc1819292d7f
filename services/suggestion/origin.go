package suggestion

import (
	"time"

	"fieldserve/models"
)

// ResolveOrigin determines what the technician is doing immediately before a
// candidate slot: the prior booking on that day's calendar, or home for the
// first job of the day. When the prior booking carries no location at all the
// context falls back to home and is marked degraded, so the score can discount
// confidence downstream.
func ResolveOrigin(tech models.Technician, slot models.CandidateSlot, bookings []models.Booking) models.OriginContext {
	if slot.IsFirstJob {
		return homeOrigin(tech, false)
	}

	prior := priorBooking(slot, bookings)
	if prior == nil {
		// Calendar drifted between candidate generation and origin
		// resolution; treat as starting from home.
		return homeOrigin(tech, false)
	}
	if prior.Address == "" && prior.Coordinate == nil {
		return homeOrigin(tech, true)
	}

	end := prior.End
	return models.OriginContext{
		Address:         prior.Address,
		Coordinate:      prior.Coordinate,
		PriorBookingEnd: &end,
		PriorTitle:      prior.Title,
	}
}

// priorBooking returns the booking immediately preceding the slot's start, or
// nil when there is none. A booking counts when it ends on the slot's day at
// or before the slot start, which includes overnight bookings spilling in
// from the previous day; those are the technician's real last stop.
func priorBooking(slot models.CandidateSlot, bookings []models.Booking) *models.Booking {
	loc := slot.Start.Location()
	dayStart := time.Date(slot.Start.Year(), slot.Start.Month(), slot.Start.Day(), 0, 0, 0, 0, loc)

	var prior *models.Booking
	for i := range bookings {
		b := &bookings[i]
		if !b.End.After(dayStart) || b.End.After(slot.Start) {
			continue
		}
		if prior == nil || b.End.After(prior.End) {
			prior = b
		}
	}
	return prior
}

func homeOrigin(tech models.Technician, degraded bool) models.OriginContext {
	return models.OriginContext{
		Address:    tech.HomeAddress,
		Coordinate: tech.HomeCoordinate,
		IsFirstJob: !degraded,
		Degraded:   degraded,
	}
}
