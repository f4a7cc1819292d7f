package models

import (
	"strings"
	"time"
)

// WorkingHours is one weekday's working window in minutes from midnight
// (e.g., 480 for 8:00 AM).
type WorkingHours struct {
	Start int `bson:"start" json:"start"`
	End   int `bson:"end" json:"end"`
}

// Technician represents a field technician. Created and edited by admin CRUD
// elsewhere in the portal; the suggestion engine only reads these records.
type Technician struct {
	ID             string                  `bson:"id" json:"id"`
	Name           string                  `bson:"name" json:"name"`
	HomeAddress    string                  `bson:"home_address" json:"homeAddress"`
	HomeCoordinate *Coordinate             `bson:"home_coordinate,omitempty" json:"homeCoordinate,omitempty"`
	VehicleID      string                  `bson:"vehicle_id,omitempty" json:"vehicleId,omitempty"`
	WeeklyHours    map[string]WorkingHours `bson:"weekly_hours" json:"weeklyHours"` // keyed by lowercase weekday name
	Active         bool                    `bson:"active" json:"active"`
}

// HoursFor returns the working-hours template for the given weekday.
// The second return value is false when the technician does not work that day.
func (t Technician) HoursFor(day time.Weekday) (WorkingHours, bool) {
	wh, ok := t.WeeklyHours[strings.ToLower(day.String())]
	if !ok || wh.End <= wh.Start {
		return WorkingHours{}, false
	}
	return wh, true
}
