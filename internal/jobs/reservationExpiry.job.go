package jobs

import (
	"context"

	"resorthub/internal/logger"
	"resorthub/internal/services"
)

// ReservationExpirer flips every overdue pending reservation to expired.
type ReservationExpirer interface {
	ExpireOverdue(ctx context.Context) (int64, error)
}

// ReservationExpiryJob runs the same sweep the read paths perform lazily, so
// holds expire even when nobody reads them.
type ReservationExpiryJob struct {
	expirer  ReservationExpirer
	log      logger.Logger
	schedule services.Schedule
}

func NewReservationExpiryJob(expirer ReservationExpirer, schedule services.Schedule) *ReservationExpiryJob {
	return &ReservationExpiryJob{
		expirer:  expirer,
		log:      logger.New("reservationExpiryJob"),
		schedule: schedule,
	}
}

func (j *ReservationExpiryJob) Name() string {
	return "ReservationExpirySweep"
}

func (j *ReservationExpiryJob) Execute(ctx context.Context) error {
	log := j.log.TraceFromContext(ctx).Function("Execute")

	expired, err := j.expirer.ExpireOverdue(ctx)
	if err != nil {
		return log.Err("reservation expiry sweep failed", err)
	}

	if expired > 0 {
		log.Info("expired overdue reservations", "count", expired)
	}
	return nil
}

func (j *ReservationExpiryJob) Schedule() services.Schedule {
	return j.schedule
}
