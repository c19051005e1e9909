package repositories

import (
	"context"
	"time"

	"resorthub/internal/logger"
	. "resorthub/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReservationScope narrows lazy expiration and listing reads. An empty scope
// matches every reservation.
type ReservationScope struct {
	ID         *uuid.UUID
	CustomerID *uuid.UUID
	OwnerID    *uuid.UUID
	Status     *ReservationStatus
}

// ScopeFor returns the scope of reservations visible to p.
func ScopeFor(p Principal) ReservationScope {
	id := p.ID
	switch p.Kind {
	case PrincipalCustomer:
		return ReservationScope{CustomerID: &id}
	case PrincipalOwner:
		return ReservationScope{OwnerID: &id}
	}
	return ReservationScope{}
}

type ConfirmedRangeFilter struct {
	OwnerID      uuid.UUID
	ResourceKind *ListingKind
	ResourceID   *uuid.UUID
	From         time.Time
	To           time.Time
}

type ReservationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, reservation *Reservation) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*Reservation, error)
	List(ctx context.Context, tx *gorm.DB, scope ReservationScope) ([]*Reservation, error)
	CountConfirmedOverlaps(
		ctx context.Context,
		tx *gorm.DB,
		kind ListingKind,
		resourceID uuid.UUID,
		checkIn time.Time,
		checkOut time.Time,
		excludeID *uuid.UUID,
	) (int64, error)
	ListConfirmedInRange(ctx context.Context, tx *gorm.DB, filter ConfirmedRangeFilter) ([]*Reservation, error)
	// Transition moves a reservation from one status to another and clears the
	// hold. It reports false when the row was not in the expected status.
	Transition(
		ctx context.Context,
		tx *gorm.DB,
		id uuid.UUID,
		from ReservationStatus,
		to ReservationStatus,
	) (bool, error)
	ExpireOverdue(ctx context.Context, tx *gorm.DB, now time.Time, scope ReservationScope) (int64, error)
	DeleteForParty(ctx context.Context, tx *gorm.DB, party Principal) error
}

type reservationRepository struct{}

func NewReservationRepository() ReservationRepository {
	return &reservationRepository{}
}

func (r *reservationRepository) Create(
	ctx context.Context,
	tx *gorm.DB,
	reservation *Reservation,
) error {
	log := logger.NewWithContext(ctx, "reservationRepository").Function("Create")

	if err := tx.WithContext(ctx).Create(reservation).Error; err != nil {
		return log.Err(
			"failed to create reservation",
			translate(err),
			"resourceKind", reservation.ResourceKind,
			"resourceID", reservation.ResourceID,
		)
	}
	return nil
}

func (r *reservationRepository) GetByID(
	ctx context.Context,
	tx *gorm.DB,
	id uuid.UUID,
) (*Reservation, error) {
	reservation, err := gorm.G[Reservation](tx).Where("id = ?", id).First(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return &reservation, nil
}

func (r *reservationRepository) List(
	ctx context.Context,
	tx *gorm.DB,
	scope ReservationScope,
) ([]*Reservation, error) {
	log := logger.NewWithContext(ctx, "reservationRepository").Function("List")

	var reservations []*Reservation
	err := applyScope(tx.WithContext(ctx), scope).
		Preload("Customer").
		Preload("Owner").
		Order("created_at DESC, id DESC").
		Find(&reservations).Error
	if err != nil {
		return nil, log.Err("failed to list reservations", translate(err))
	}
	return reservations, nil
}

// CountConfirmedOverlaps counts confirmed reservations on the resource whose
// [check_in, check_out] intersects the given range, both ends inclusive.
func (r *reservationRepository) CountConfirmedOverlaps(
	ctx context.Context,
	tx *gorm.DB,
	kind ListingKind,
	resourceID uuid.UUID,
	checkIn time.Time,
	checkOut time.Time,
	excludeID *uuid.UUID,
) (int64, error) {
	log := logger.NewWithContext(ctx, "reservationRepository").Function("CountConfirmedOverlaps")

	query := tx.WithContext(ctx).
		Model(&Reservation{}).
		Where("resource_kind = ? AND resource_id = ?", kind, resourceID).
		Where("status = ?", ReservationConfirmed).
		Where("check_in <= ? AND check_out >= ?", checkOut, checkIn)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, log.Err("failed to count overlapping reservations", translate(err), "resourceID", resourceID)
	}
	return count, nil
}

func (r *reservationRepository) ListConfirmedInRange(
	ctx context.Context,
	tx *gorm.DB,
	filter ConfirmedRangeFilter,
) ([]*Reservation, error) {
	log := logger.NewWithContext(ctx, "reservationRepository").Function("ListConfirmedInRange")

	query := tx.WithContext(ctx).
		Where("owner_id = ? AND status = ?", filter.OwnerID, ReservationConfirmed).
		Where("check_in <= ? AND check_out >= ?", filter.To, filter.From)
	if filter.ResourceKind != nil {
		query = query.Where("resource_kind = ?", *filter.ResourceKind)
	}
	if filter.ResourceID != nil {
		query = query.Where("resource_id = ?", *filter.ResourceID)
	}

	var reservations []*Reservation
	if err := query.Order("check_in ASC").Find(&reservations).Error; err != nil {
		return nil, log.Err("failed to list confirmed reservations", translate(err), "ownerID", filter.OwnerID)
	}
	return reservations, nil
}

func (r *reservationRepository) Transition(
	ctx context.Context,
	tx *gorm.DB,
	id uuid.UUID,
	from ReservationStatus,
	to ReservationStatus,
) (bool, error) {
	log := logger.NewWithContext(ctx, "reservationRepository").Function("Transition")

	result := tx.WithContext(ctx).
		Model(&Reservation{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to, "expires_at": nil})
	if result.Error != nil {
		return false, log.Err(
			"failed to transition reservation",
			translate(result.Error),
			"reservationID", id,
			"from", from,
			"to", to,
		)
	}
	return result.RowsAffected == 1, nil
}

// ExpireOverdue rewrites every overdue pending reservation in scope to expired
// with a single UPDATE. Running it twice is a no-op the second time.
func (r *reservationRepository) ExpireOverdue(
	ctx context.Context,
	tx *gorm.DB,
	now time.Time,
	scope ReservationScope,
) (int64, error) {
	log := logger.NewWithContext(ctx, "reservationRepository").Function("ExpireOverdue")

	scope.Status = nil
	result := applyScope(tx.WithContext(ctx).Model(&Reservation{}), scope).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at <= ?", ReservationPending, now).
		Update("status", ReservationExpired)
	if result.Error != nil {
		return 0, log.Err("failed to expire reservations", translate(result.Error))
	}
	return result.RowsAffected, nil
}

func (r *reservationRepository) DeleteForParty(ctx context.Context, tx *gorm.DB, party Principal) error {
	log := logger.NewWithContext(ctx, "reservationRepository").Function("DeleteForParty")

	column := "customer_id"
	if party.Kind == PrincipalOwner {
		column = "owner_id"
	}

	if _, err := gorm.G[Reservation](tx).Where(column+" = ?", party.ID).Delete(ctx); err != nil {
		return log.Err("failed to delete reservations", translate(err), "party", party.String())
	}
	return nil
}

func applyScope(query *gorm.DB, scope ReservationScope) *gorm.DB {
	if scope.ID != nil {
		query = query.Where("id = ?", *scope.ID)
	}
	if scope.CustomerID != nil {
		query = query.Where("customer_id = ?", *scope.CustomerID)
	}
	if scope.OwnerID != nil {
		query = query.Where("owner_id = ?", *scope.OwnerID)
	}
	if scope.Status != nil {
		query = query.Where("status = ?", *scope.Status)
	}
	return query
}
