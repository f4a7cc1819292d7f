package technicianRepo

import "fieldserve/models"

// TechnicianRepository defines methods for technician data access.
type TechnicianRepository interface {
	// GetByID retrieves a technician by its unique ID.
	GetByID(id string) (*models.Technician, error)
	// GetAllActive retrieves all active technicians.
	GetAllActive() ([]models.Technician, error)
	// GetByIDs retrieves active technicians matching the given IDs.
	GetByIDs(ids []string) ([]models.Technician, error)
	// UpdateHomeCoordinate patches a technician's geocoded home coordinate.
	UpdateHomeCoordinate(id string, coord models.Coordinate) error
}
