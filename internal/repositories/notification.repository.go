package repositories

import (
	"context"

	"resorthub/internal/logger"
	. "resorthub/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const NotificationPageSize = 20

type NotificationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, notification *Notification) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*Notification, error)
	// ListFor returns the newest notifications visible to the reader. Admins
	// see every row, everyone else only rows related to them.
	ListFor(ctx context.Context, tx *gorm.DB, reader Principal, limit int) ([]*Notification, error)
	CountUnread(ctx context.Context, tx *gorm.DB, reader Principal) (int64, error)
	MarkRead(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	MarkAllRead(ctx context.Context, tx *gorm.DB) (int64, error)
	DeleteForParty(ctx context.Context, tx *gorm.DB, party Principal) error
}

type notificationRepository struct{}

func NewNotificationRepository() NotificationRepository {
	return &notificationRepository{}
}

func (r *notificationRepository) Create(
	ctx context.Context,
	tx *gorm.DB,
	notification *Notification,
) error {
	log := logger.NewWithContext(ctx, "notificationRepository").Function("Create")

	if err := gorm.G[Notification](tx).Create(ctx, notification); err != nil {
		return log.Err("failed to create notification", translate(err), "kind", notification.Kind)
	}
	return nil
}

func (r *notificationRepository) GetByID(
	ctx context.Context,
	tx *gorm.DB,
	id uuid.UUID,
) (*Notification, error) {
	notification, err := gorm.G[Notification](tx).Where("id = ?", id).First(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return &notification, nil
}

func (r *notificationRepository) ListFor(
	ctx context.Context,
	tx *gorm.DB,
	reader Principal,
	limit int,
) ([]*Notification, error) {
	log := logger.NewWithContext(ctx, "notificationRepository").Function("ListFor")

	query := readerScope(tx.WithContext(ctx), reader).Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var notifications []*Notification
	if err := query.Find(&notifications).Error; err != nil {
		return nil, log.Err("failed to list notifications", translate(err), "reader", reader.String())
	}
	return notifications, nil
}

func (r *notificationRepository) CountUnread(
	ctx context.Context,
	tx *gorm.DB,
	reader Principal,
) (int64, error) {
	log := logger.NewWithContext(ctx, "notificationRepository").Function("CountUnread")

	var count int64
	err := readerScope(tx.WithContext(ctx).Model(&Notification{}), reader).
		Where("is_read = ?", false).
		Count(&count).Error
	if err != nil {
		return 0, log.Err("failed to count notifications", translate(err), "reader", reader.String())
	}
	return count, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	log := logger.NewWithContext(ctx, "notificationRepository").Function("MarkRead")

	rows, err := gorm.G[Notification](tx).Where("id = ?", id).Update(ctx, "is_read", true)
	if err != nil {
		return log.Err("failed to mark notification read", translate(err), "notificationID", id)
	}
	if rows == 0 {
		return translate(gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, tx *gorm.DB) (int64, error) {
	log := logger.NewWithContext(ctx, "notificationRepository").Function("MarkAllRead")

	rows, err := gorm.G[Notification](tx).Where("is_read = ?", false).Update(ctx, "is_read", true)
	if err != nil {
		return 0, log.Err("failed to mark notifications read", translate(err))
	}
	return int64(rows), nil
}

func (r *notificationRepository) DeleteForParty(ctx context.Context, tx *gorm.DB, party Principal) error {
	log := logger.NewWithContext(ctx, "notificationRepository").Function("DeleteForParty")

	column := "related_customer_id"
	if party.IsOwner() {
		column = "related_owner_id"
	}

	if _, err := gorm.G[Notification](tx).Where(column+" = ?", party.ID).Delete(ctx); err != nil {
		return log.Err("failed to delete notifications", translate(err), "party", party.String())
	}
	return nil
}

func readerScope(query *gorm.DB, reader Principal) *gorm.DB {
	switch reader.Kind {
	case PrincipalAdmin:
		return query
	case PrincipalCustomer:
		return query.Where("related_customer_id = ?", reader.ID)
	case PrincipalOwner:
		return query.Where("related_owner_id = ?", reader.ID)
	}
	return query.Where("1 = 0")
}
