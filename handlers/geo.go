package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"fieldserve/config"
	"fieldserve/services/geo"

	"github.com/gin-gonic/gin"
)

// GeoHandler relays geocoding and directions lookups for the portal map view.
type GeoHandler struct {
	Geocoder geo.Geocoder
}

// NewGeoHandler creates a GeoHandler.
func NewGeoHandler(geocoder geo.Geocoder) *GeoHandler {
	return &GeoHandler{Geocoder: geocoder}
}

// GeocodeAddress handles GET /api/geo/geocode?address=...
func (h *GeoHandler) GeocodeAddress(c *gin.Context) {
	address := c.Query("address")
	if address == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required query parameter: address"})
		return
	}

	coord, err := h.Geocoder.Geocode(c.Request.Context(), address)
	if err != nil {
		if err == geo.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Address not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Geocoding request failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"coordinate": coord})
}

// directionsPolylineResponse carries the overview polyline from the Google
// Directions API.
type directionsPolylineResponse struct {
	Routes []struct {
		OverviewPolyline struct {
			Points string `json:"points"`
		} `json:"overview_polyline"`
	} `json:"routes"`
}

// GetDirections handles GET /api/geo/directions and returns the route
// polyline between two coordinates.
func (h *GeoHandler) GetDirections(c *gin.Context) {
	originLat := c.Query("originLat")
	originLng := c.Query("originLng")
	destLat := c.Query("destLat")
	destLng := c.Query("destLng")

	if originLat == "" || originLng == "" || destLat == "" || destLng == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required query parameters: originLat, originLng, destLat, destLng"})
		return
	}

	apiKey := config.AppConfig.GoogleAPIKey
	if apiKey == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "API authentication error"})
		return
	}

	url := fmt.Sprintf(
		"https://maps.googleapis.com/maps/api/directions/json?origin=%s,%s&destination=%s,%s&key=%s",
		originLat, originLng, destLat, destLng, apiKey,
	)

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, url, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Please try again later"})
		return
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Please try again later"})
		return
	}
	defer resp.Body.Close()

	var directions directionsPolylineResponse
	if err := json.NewDecoder(resp.Body).Decode(&directions); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Please try again later"})
		return
	}
	if len(directions.Routes) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No route found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"polyline": directions.Routes[0].OverviewPolyline.Points})
}
