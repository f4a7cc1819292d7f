package routes

import (
	"net/http"
	"time"

	"fieldserve/handlers"
	"fieldserve/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterSuggestionRoutes sets up the endpoints for the suggestion engine.
func RegisterSuggestionRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/suggestions")
	{
		api.POST("", hb.Suggest)
	}
}

// RegisterTechnicianRoutes registers technician directory endpoints.
func RegisterTechnicianRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/technicians")
	{
		api.GET("", hb.ListTechnicians)
		api.GET("/id/:id", hb.GetTechnicianByID)
		api.GET("/locations", hb.GetTechnicianLocations)
	}
}

// RegisterGeoRoutes registers geocoding/directions relays for the map view.
func RegisterGeoRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/geo")
	{
		api.GET("/geocode", hb.GeocodeAddress)
		api.GET("/directions", hb.GetDirections)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "services": utils.GetHealthStatus()})
	})
}

// RegisterMetricsRoute exposes the Prometheus registry.
func RegisterMetricsRoute(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(utils.MetricsRegistry, promhttp.HandlerOpts{})))
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterSuggestionRoutes(r, hb)
	RegisterTechnicianRoutes(r, hb)
	RegisterGeoRoutes(r, hb)
	RegisterHealthRoute(r)
	RegisterMetricsRoute(r)
}
