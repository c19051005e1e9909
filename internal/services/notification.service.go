package services

import (
	"context"

	"resorthub/internal/events"
	"resorthub/internal/logger"
	"resorthub/internal/models"
	"resorthub/internal/repositories"

	"gorm.io/gorm"
)

// Notifier writes notifications and pushes them to live connections.
// Store belongs inside the caller's transaction, Publish after it commits.
type Notifier interface {
	Store(ctx context.Context, tx *gorm.DB, notification *models.Notification) error
	Publish(ctx context.Context, notification *models.Notification)
	Emit(ctx context.Context, tx *gorm.DB, notification *models.Notification) error
}

type NotificationService struct {
	repo      repositories.NotificationRepository
	publisher events.Publisher
	metrics   *Metrics
	log       logger.Logger
}

func NewNotificationService(
	repo repositories.NotificationRepository,
	publisher events.Publisher,
	metrics *Metrics,
) *NotificationService {
	return &NotificationService{
		repo:      repo,
		publisher: publisher,
		metrics:   metrics,
		log:       logger.New("notificationService"),
	}
}

func (s *NotificationService) Store(
	ctx context.Context,
	tx *gorm.DB,
	notification *models.Notification,
) error {
	log := s.log.TraceFromContext(ctx).Function("Store")

	if err := s.repo.Create(ctx, tx, notification); err != nil {
		return log.Err("failed to store notification", err, "kind", notification.Kind)
	}
	s.metrics.NotificationEmitted(string(notification.Kind))
	return nil
}

// Publish is best-effort; a failed push only logs.
func (s *NotificationService) Publish(ctx context.Context, notification *models.Notification) {
	if s.publisher == nil {
		return
	}
	if err := events.PublishNotification(s.publisher, notification); err != nil {
		s.log.TraceFromContext(ctx).
			Function("Publish").
			Warn("failed to publish notification", "notificationID", notification.ID, "error", err)
	}
}

// Emit stores and immediately publishes, for writes outside a transaction.
func (s *NotificationService) Emit(
	ctx context.Context,
	tx *gorm.DB,
	notification *models.Notification,
) error {
	if err := s.Store(ctx, tx, notification); err != nil {
		return err
	}
	s.Publish(ctx, notification)
	return nil
}
