package handlers

import (
	"net/http"

	technicianRepo "fieldserve/database/repository/technician"
	"fieldserve/models"
	"fieldserve/services/geo"
	"fieldserve/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TechnicianHandler serves the technician directory to the portal UI.
type TechnicianHandler struct {
	Repo     technicianRepo.TechnicianRepository
	Vehicles geo.VehicleLocator
}

// NewTechnicianHandler creates a TechnicianHandler. The vehicle locator may be
// nil when no fleet API is configured.
func NewTechnicianHandler(repo technicianRepo.TechnicianRepository, vehicles geo.VehicleLocator) *TechnicianHandler {
	return &TechnicianHandler{Repo: repo, Vehicles: vehicles}
}

// ListTechnicians handles GET /api/technicians.
func (h *TechnicianHandler) ListTechnicians(c *gin.Context) {
	techs, err := h.Repo.GetAllActive()
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to load technicians", err.Error())
		return
	}
	if techs == nil {
		techs = []models.Technician{}
	}
	c.JSON(http.StatusOK, gin.H{"technicians": techs})
}

// GetTechnicianByID handles GET /api/technicians/id/:id.
func (h *TechnicianHandler) GetTechnicianByID(c *gin.Context) {
	id := c.Param("id")
	tech, err := h.Repo.GetByID(id)
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, "Technician not found", id)
		return
	}
	c.JSON(http.StatusOK, tech)
}

// GetTechnicianLocations handles GET /api/technicians/locations. It relays
// live vehicle positions for the map view; technicians without a vehicle or
// with a failed lookup are simply omitted.
func (h *TechnicianHandler) GetTechnicianLocations(c *gin.Context) {
	if h.Vehicles == nil {
		c.JSON(http.StatusOK, gin.H{"locations": []models.VehiclePosition{}})
		return
	}

	techs, err := h.Repo.GetAllActive()
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to load technicians", err.Error())
		return
	}

	logger := utils.GetLogger()
	locations := []models.VehiclePosition{}
	for _, tech := range techs {
		if tech.VehicleID == "" {
			continue
		}
		pos, err := h.Vehicles.Position(c.Request.Context(), tech.VehicleID)
		if err != nil {
			logger.Debug("vehicle position unavailable",
				zap.String("technicianID", tech.ID), zap.Error(err))
			continue
		}
		locations = append(locations, *pos)
	}
	c.JSON(http.StatusOK, gin.H{"locations": locations})
}
