package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fieldserve/config"
	"fieldserve/cron"
	"fieldserve/database"
	bookingRepoPkg "fieldserve/database/repository/booking"
	technicianRepoPkg "fieldserve/database/repository/technician"
	"fieldserve/handlers"
	"fieldserve/middleware"
	"fieldserve/routes"
	"fieldserve/services/availability"
	"fieldserve/services/geo"
	"fieldserve/services/suggestion"
	"fieldserve/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()
	utils.RegisterMetrics()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	techRepo := technicianRepoPkg.NewMongoTechnicianRepo()
	bookRepo := bookingRepoPkg.NewMongoBookingRepo()

	// external providers.
	geocoder := geo.NewGoogleGeocoder()
	travelEstimator := geo.NewGoogleTravelEstimator()
	var vehicles geo.VehicleLocator
	if locator := geo.NewFleetVehicleLocator(); locator != nil {
		vehicles = locator
	}

	// services.
	availabilityResolver := &availability.DefaultResolver{Repo: bookRepo}
	engine := &suggestion.DefaultEngine{
		Availability:  availabilityResolver,
		Geocoder:      geocoder,
		Travel:        travelEstimator,
		Vehicles:      vehicles,
		Workers:       config.AppConfig.SuggestWorkers,
		TravelTimeout: time.Duration(config.AppConfig.SuggestTravelTimeoutMs) * time.Millisecond,
		Logger:        logger,
	}

	suggestionHandler := handlers.NewSuggestionHandler(engine, techRepo, logger)
	technicianHandler := handlers.NewTechnicianHandler(techRepo, vehicles)
	geoHandler := handlers.NewGeoHandler(geocoder)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		Suggest: suggestionHandler.Suggest,

		ListTechnicians:        technicianHandler.ListTechnicians,
		GetTechnicianByID:      technicianHandler.GetTechnicianByID,
		GetTechnicianLocations: technicianHandler.GetTechnicianLocations,

		GeocodeAddress: geoHandler.GeocodeAddress,
		GetDirections:  geoHandler.GetDirections,
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Background workers and health monitoring.
	cron.InitGeocodeWorker(techRepo, geocoder)
	utils.StartHealthMonitor(
		[]*redis.Client{utils.CacheClient, utils.GeoCacheClient},
		database.MongoClient,
	)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
