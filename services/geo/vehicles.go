package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"fieldserve/config"
	"fieldserve/models"
	"fieldserve/utils"
)

// FleetVehicleLocator implements VehicleLocator against the fleet tracker API.
// It is a read-only data source; GPS ingestion happens elsewhere.
type FleetVehicleLocator struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewFleetVehicleLocator builds a locator from the app configuration. Returns
// nil when no fleet API is configured; callers treat a nil locator as "no live
// positions available".
func NewFleetVehicleLocator() *FleetVehicleLocator {
	if config.AppConfig.FleetAPIBaseURL == "" {
		return nil
	}
	return &FleetVehicleLocator{
		BaseURL: config.AppConfig.FleetAPIBaseURL,
		APIKey:  config.AppConfig.FleetAPIKey,
		Client:  &http.Client{Timeout: 3 * time.Second},
	}
}

func (l *FleetVehicleLocator) Position(ctx context.Context, vehicleID string) (*models.VehiclePosition, error) {
	if vehicleID == "" {
		return nil, ErrNotFound
	}

	reqURL := fmt.Sprintf("%s/vehicles/%s/position", l.BaseURL, vehicleID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fleet request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+l.APIKey)

	resp, err := l.Client.Do(req)
	if err != nil {
		utils.ProviderCalls.WithLabelValues("fleet", "error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		utils.ProviderCalls.WithLabelValues("fleet", "empty").Inc()
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		utils.ProviderCalls.WithLabelValues("fleet", "error").Inc()
		return nil, fmt.Errorf("%w: fleet status %d", ErrUnavailable, resp.StatusCode)
	}

	var pos models.VehiclePosition
	if err := json.NewDecoder(resp.Body).Decode(&pos); err != nil {
		utils.ProviderCalls.WithLabelValues("fleet", "error").Inc()
		return nil, fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
	}
	utils.ProviderCalls.WithLabelValues("fleet", "ok").Inc()
	pos.VehicleID = vehicleID
	return &pos, nil
}
