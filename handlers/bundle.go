package handlers

import "github.com/gin-gonic/gin"

// HandlerBundle aggregates the portal's HTTP handlers for route registration.
type HandlerBundle struct {
	// Suggestion endpoints.
	Suggest gin.HandlerFunc

	// Technician directory endpoints.
	ListTechnicians        gin.HandlerFunc
	GetTechnicianByID      gin.HandlerFunc
	GetTechnicianLocations gin.HandlerFunc

	// Geo relays for the map view.
	GeocodeAddress gin.HandlerFunc
	GetDirections  gin.HandlerFunc
}
