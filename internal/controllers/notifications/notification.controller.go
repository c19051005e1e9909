package notificationController

import (
	"context"

	"resorthub/internal/apperror"
	"resorthub/internal/database"
	"resorthub/internal/logger"
	. "resorthub/internal/models"
	"resorthub/internal/repositories"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationControllerInterface interface {
	List(ctx context.Context, reader Principal) ([]*Notification, error)
	UnreadCount(ctx context.Context, reader Principal) (int64, error)
	MarkRead(ctx context.Context, reader Principal, id uuid.UUID) error
	MarkAllRead(ctx context.Context, reader Principal) (int64, error)
}

type NotificationController struct {
	notificationRepo repositories.NotificationRepository
	db               *gorm.DB
	log              logger.Logger
}

func New(repos repositories.Repository, db database.DB) NotificationControllerInterface {
	return &NotificationController{
		notificationRepo: repos.Notification,
		db:               db.SQL,
		log:              logger.New("notificationController"),
	}
}

// List returns the newest page for customers and owners; admins get every row.
func (c *NotificationController) List(ctx context.Context, reader Principal) ([]*Notification, error) {
	limit := repositories.NotificationPageSize
	if reader.IsAdmin() {
		limit = 0
	}

	notifications, err := c.notificationRepo.ListFor(ctx, c.db, reader, limit)
	if err != nil {
		return nil, apperror.Store(err)
	}
	if notifications == nil {
		notifications = []*Notification{}
	}
	return notifications, nil
}

func (c *NotificationController) UnreadCount(ctx context.Context, reader Principal) (int64, error) {
	count, err := c.notificationRepo.CountUnread(ctx, c.db, reader)
	if err != nil {
		return 0, apperror.Store(err)
	}
	return count, nil
}

// MarkRead answers NotFound both for unknown rows and rows the reader cannot see.
func (c *NotificationController) MarkRead(ctx context.Context, reader Principal, id uuid.UUID) error {
	notification, err := c.notificationRepo.GetByID(ctx, c.db, id)
	if err != nil {
		return err
	}
	if !notification.VisibleTo(reader) {
		return apperror.ErrNotFound
	}
	if notification.IsRead {
		return nil
	}
	return c.notificationRepo.MarkRead(ctx, c.db, id)
}

func (c *NotificationController) MarkAllRead(ctx context.Context, reader Principal) (int64, error) {
	log := c.log.TraceFromContext(ctx).Function("MarkAllRead")

	if !reader.IsAdmin() {
		return 0, apperror.ErrNotAuthorized
	}

	rows, err := c.notificationRepo.MarkAllRead(ctx, c.db)
	if err != nil {
		return 0, apperror.Store(err)
	}
	log.Info("marked notifications read", "count", rows)
	return rows, nil
}
