package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"fieldserve/config"
	"fieldserve/models"
	"fieldserve/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Addresses are stable, so geocoding results are cached in Redis with a long TTL.
const geocodeCacheTTL = 30 * 24 * time.Hour

// geocodeResponse mirrors the fields we read from the Google Geocoding API.
type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// GoogleGeocoder implements Geocoder against the Google Geocoding API.
type GoogleGeocoder struct {
	APIKey string
	Client *http.Client
	Cache  *redis.Client
}

// NewGoogleGeocoder builds a geocoder from the app configuration.
func NewGoogleGeocoder() *GoogleGeocoder {
	return &GoogleGeocoder{
		APIKey: config.AppConfig.GoogleAPIKey,
		Client: &http.Client{Timeout: 5 * time.Second},
		Cache:  utils.GetGeoCacheClient(),
	}
}

func (g *GoogleGeocoder) Geocode(ctx context.Context, address string) (models.Coordinate, error) {
	if address == "" {
		return models.Coordinate{}, ErrNotFound
	}

	cacheKey := "geo:addr:" + address
	if g.Cache != nil {
		if cached, err := g.Cache.Get(ctx, cacheKey).Result(); err == nil {
			var coord models.Coordinate
			if err := json.Unmarshal([]byte(cached), &coord); err == nil {
				return coord, nil
			}
		}
	}

	reqURL := fmt.Sprintf(
		"https://maps.googleapis.com/maps/api/geocode/json?address=%s&key=%s",
		url.QueryEscape(address), g.APIKey,
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return models.Coordinate{}, fmt.Errorf("geocode request: %w", err)
	}

	resp, err := g.Client.Do(req)
	if err != nil {
		utils.ProviderCalls.WithLabelValues("geocode", "error").Inc()
		return models.Coordinate{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	var data geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		utils.ProviderCalls.WithLabelValues("geocode", "error").Inc()
		return models.Coordinate{}, fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
	}
	if len(data.Results) == 0 {
		utils.ProviderCalls.WithLabelValues("geocode", "empty").Inc()
		utils.GetLogger().Warn("geocode returned no results",
			zap.String("address", address), zap.String("status", data.Status))
		return models.Coordinate{}, ErrNotFound
	}
	utils.ProviderCalls.WithLabelValues("geocode", "ok").Inc()

	coord := models.Coordinate{
		Lat: data.Results[0].Geometry.Location.Lat,
		Lng: data.Results[0].Geometry.Location.Lng,
	}
	if g.Cache != nil {
		if b, err := json.Marshal(coord); err == nil {
			g.Cache.Set(ctx, cacheKey, b, geocodeCacheTTL)
		}
	}
	return coord, nil
}
