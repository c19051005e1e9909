package services

import (
	"time"

	"resorthub/config"
	"resorthub/internal/clock"
	"resorthub/internal/database"
	"resorthub/internal/events"
	"resorthub/internal/repositories"
)

type Service struct {
	Transaction  *TransactionService
	Scheduler    *SchedulerService
	Session      *SessionService
	Images       ImageStore
	Metrics      *Metrics
	Notification *NotificationService
	Events       events.Publisher
	Clock        clock.Clock
}

func New(
	db database.DB,
	config config.Config,
	eventBus *events.EventBus,
	repos repositories.Repository,
) (Service, error) {
	clk := clock.NewSystem()

	imageStore, err := NewImageStore(config)
	if err != nil {
		return Service{}, err
	}

	metrics := NewMetrics()

	return Service{
		Transaction: NewTransactionService(db),
		Scheduler:   NewSchedulerService(),
		Session: NewSessionService(
			NewValkeySessionStore(db.Cache.Session),
			config.SecurityJwtSecret,
			time.Duration(config.SessionTTLHours)*time.Hour,
			clk,
		),
		Images:       imageStore,
		Metrics:      metrics,
		Notification: NewNotificationService(repos.Notification, eventBus, metrics),
		Events:       eventBus,
		Clock:        clk,
	}, nil
}
