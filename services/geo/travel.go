package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"

	"fieldserve/config"
	"fieldserve/models"
	"fieldserve/utils"
)

// directionsResponse mirrors the fields we read from the Google Directions API.
type directionsResponse struct {
	Status string `json:"status"`
	Routes []struct {
		Legs []struct {
			Duration struct {
				Value int `json:"value"` // seconds
			} `json:"duration"`
		} `json:"legs"`
	} `json:"routes"`
}

// GoogleTravelEstimator implements TravelEstimator against the Google
// Directions API.
type GoogleTravelEstimator struct {
	APIKey string
	Client *http.Client
}

// NewGoogleTravelEstimator builds a travel estimator from the app configuration.
func NewGoogleTravelEstimator() *GoogleTravelEstimator {
	timeout := time.Duration(config.AppConfig.SuggestTravelTimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 1500 * time.Millisecond
	}
	return &GoogleTravelEstimator{
		APIKey: config.AppConfig.GoogleAPIKey,
		Client: &http.Client{Timeout: timeout},
	}
}

func (e *GoogleTravelEstimator) TravelTime(ctx context.Context, origin, dest models.Coordinate) (int, error) {
	reqURL := fmt.Sprintf(
		"https://maps.googleapis.com/maps/api/directions/json?origin=%f,%f&destination=%f,%f&key=%s",
		origin.Lat, origin.Lng, dest.Lat, dest.Lng, e.APIKey,
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, fmt.Errorf("directions request: %w", err)
	}

	resp, err := e.Client.Do(req)
	if err != nil {
		utils.ProviderCalls.WithLabelValues("directions", "error").Inc()
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	var data directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		utils.ProviderCalls.WithLabelValues("directions", "error").Inc()
		return 0, fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
	}
	if len(data.Routes) == 0 || len(data.Routes[0].Legs) == 0 {
		utils.ProviderCalls.WithLabelValues("directions", "empty").Inc()
		return 0, ErrNotFound
	}
	utils.ProviderCalls.WithLabelValues("directions", "ok").Inc()

	seconds := 0
	for _, leg := range data.Routes[0].Legs {
		seconds += leg.Duration.Value
	}
	return int(math.Round(float64(seconds) / 60.0)), nil
}

// travelResult is a memoized estimator outcome.
type travelResult struct {
	minutes int
	err     error
}

// RequestTravelCache memoizes travel-time lookups for the lifetime of a single
// suggestion request, keyed by coordinate pairs rounded to ~100m. Many
// candidates share an origin (e.g., all first-job candidates of one
// technician), so this collapses redundant provider calls. It is request
// scoped on purpose: traffic conditions change between requests.
type RequestTravelCache struct {
	inner TravelEstimator

	mu      sync.Mutex
	results map[string]travelResult
}

// NewRequestTravelCache wraps an estimator with a request-scoped memo.
func NewRequestTravelCache(inner TravelEstimator) *RequestTravelCache {
	return &RequestTravelCache{
		inner:   inner,
		results: make(map[string]travelResult),
	}
}

func travelKey(origin, dest models.Coordinate) string {
	return fmt.Sprintf("%.3f,%.3f|%.3f,%.3f", origin.Lat, origin.Lng, dest.Lat, dest.Lng)
}

func (c *RequestTravelCache) TravelTime(ctx context.Context, origin, dest models.Coordinate) (int, error) {
	key := travelKey(origin, dest)

	c.mu.Lock()
	if r, ok := c.results[key]; ok {
		c.mu.Unlock()
		return r.minutes, r.err
	}
	c.mu.Unlock()

	minutes, err := c.inner.TravelTime(ctx, origin, dest)

	c.mu.Lock()
	c.results[key] = travelResult{minutes: minutes, err: err}
	c.mu.Unlock()

	return minutes, err
}
