package models

// Coordinate is a WGS84 latitude/longitude pair.
type Coordinate struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

// VehiclePosition is a live position report from the fleet tracker.
type VehiclePosition struct {
	VehicleID  string     `json:"vehicleId"`
	Coordinate Coordinate `json:"coordinate"`
	ReportedAt string     `json:"reportedAt"`
	Address    string     `json:"address,omitempty"`
}
