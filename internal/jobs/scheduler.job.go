package jobs

import (
	"resorthub/config"
	"resorthub/internal/logger"
	"resorthub/internal/services"
)

const (
	Hourly = services.Hourly
	Daily  = services.Daily
)

func RegisterAllJobs(
	schedulerService *services.SchedulerService,
	config config.Config,
	reservations ReservationExpirer,
) error {
	log := logger.New("jobs").Function("RegisterAllJobs")

	if !config.SchedulerEnabled {
		log.Info("Scheduler disabled, skipping job registration")
		return nil
	}

	if err := schedulerService.AddJob(NewReservationExpiryJob(reservations, Hourly)); err != nil {
		return log.Err("failed to register reservation expiry job", err)
	}
	log.Info("Registered reservation expiry job", "schedule", "hourly")

	return nil
}
