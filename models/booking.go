package models

import "time"

// Booking represents an existing committed field case on a technician's
// calendar. The engine never mutates bookings; it reads them to compute free
// time and travel origins.
type Booking struct {
	ID           string      `bson:"id" json:"id"`
	TechnicianID string      `bson:"technician_id" json:"technicianId"`
	Start        time.Time   `bson:"start" json:"start"`
	End          time.Time   `bson:"end" json:"end"`
	Title        string      `bson:"title" json:"title"`
	Address      string      `bson:"address" json:"address"`
	Coordinate   *Coordinate `bson:"coordinate,omitempty" json:"coordinate,omitempty"`
}
