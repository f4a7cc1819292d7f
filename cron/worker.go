package cron

import (
	"context"
	"log"
	"time"

	"fieldserve/config"
	technicianRepo "fieldserve/database/repository/technician"
	"fieldserve/services/geo"
	"fieldserve/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeGeocodeRefresh = "geo:refresh"

// InitGeocodeWorker runs the async worker in background. It refreshes the
// geocoded home coordinates of active technicians nightly so interactive
// suggestion requests rarely have to block on geocoding.
func InitGeocodeWorker(repo technicianRepo.TechnicianRepository, geocoder geo.Geocoder) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 2,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeGeocodeRefresh, handleGeocodeRefresh(repo, geocoder))

	scheduler := asynq.NewScheduler(redisOpts, &asynq.SchedulerOpts{})
	if _, err := scheduler.Register("0 3 * * *", asynq.NewTask(TypeGeocodeRefresh, nil)); err != nil {
		log.Printf("[GeocodeWorker] failed to register schedule: %v", err)
	}

	go func() {
		if err := scheduler.Run(); err != nil {
			log.Printf("[GeocodeWorker] scheduler stopped: %v", err)
		}
	}()

	go func() {
		log.Println("[GeocodeWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[GeocodeWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[GeocodeWorker] max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

func handleGeocodeRefresh(repo technicianRepo.TechnicianRepository, geocoder geo.Geocoder) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		logger := utils.GetLogger()

		techs, err := repo.GetAllActive()
		if err != nil {
			logger.Error("geocode refresh: failed to list technicians", zap.Error(err))
			return err
		}

		refreshed := 0
		for _, tech := range techs {
			if tech.HomeAddress == "" {
				continue
			}
			coord, err := geocoder.Geocode(ctx, tech.HomeAddress)
			if err != nil {
				logger.Warn("geocode refresh: address lookup failed",
					zap.String("technicianID", tech.ID), zap.Error(err))
				continue
			}
			if err := repo.UpdateHomeCoordinate(tech.ID, coord); err != nil {
				logger.Warn("geocode refresh: failed to store coordinate",
					zap.String("technicianID", tech.ID), zap.Error(err))
				continue
			}
			refreshed++
		}

		logger.Info("geocode refresh complete",
			zap.Int("technicians", len(techs)), zap.Int("refreshed", refreshed))
		return nil
	}
}
