package memory

import (
	"context"
	"time"

	"resorthub/internal/apperror"
	. "resorthub/internal/models"
	"resorthub/internal/repositories"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type reservationRepository struct{ s *Store }

func (r *reservationRepository) Create(_ context.Context, _ *gorm.DB, reservation *Reservation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if reservation.Status == "" {
		reservation.Status = ReservationPending
	}
	if err := r.s.stamp(&reservation.BaseUUIDModel); err != nil {
		return apperror.Store(err)
	}
	stored := *reservation
	stored.Customer, stored.Owner = nil, nil
	r.s.reservations[reservation.ID] = stored
	return nil
}

func (r *reservationRepository) GetByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	reservation, ok := r.s.reservations[id]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	return &reservation, nil
}

func (r *reservationRepository) List(
	_ context.Context,
	_ *gorm.DB,
	scope repositories.ReservationScope,
) ([]*Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*Reservation
	for _, reservation := range r.s.reservations {
		if !inScope(reservation, scope) {
			continue
		}
		if scope.Status != nil && reservation.Status != *scope.Status {
			continue
		}
		if customer, ok := r.s.customers[reservation.CustomerID]; ok {
			reservation.Customer = &customer
		}
		if owner, ok := r.s.owners[reservation.OwnerID]; ok {
			reservation.Owner = &owner
		}
		out = append(out, &reservation)
	}
	sortNewest(r.s, out, func(res *Reservation) uuid.UUID { return res.ID })
	return out, nil
}

func (r *reservationRepository) CountConfirmedOverlaps(
	_ context.Context,
	_ *gorm.DB,
	kind ListingKind,
	resourceID uuid.UUID,
	checkIn time.Time,
	checkOut time.Time,
	excludeID *uuid.UUID,
) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var count int64
	for _, reservation := range r.s.reservations {
		if reservation.Status != ReservationConfirmed ||
			reservation.ResourceKind != kind ||
			reservation.ResourceID != resourceID {
			continue
		}
		if excludeID != nil && reservation.ID == *excludeID {
			continue
		}
		if reservation.Overlaps(checkIn, checkOut) {
			count++
		}
	}
	return count, nil
}

func (r *reservationRepository) ListConfirmedInRange(
	_ context.Context,
	_ *gorm.DB,
	filter repositories.ConfirmedRangeFilter,
) ([]*Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*Reservation
	for _, reservation := range r.s.reservations {
		if reservation.Status != ReservationConfirmed || reservation.OwnerID != filter.OwnerID {
			continue
		}
		if filter.ResourceKind != nil && reservation.ResourceKind != *filter.ResourceKind {
			continue
		}
		if filter.ResourceID != nil && reservation.ResourceID != *filter.ResourceID {
			continue
		}
		if !reservation.Overlaps(filter.From, filter.To) {
			continue
		}
		out = append(out, &reservation)
	}
	sortOldest(r.s, out, func(res *Reservation) uuid.UUID { return res.ID })
	return out, nil
}

func (r *reservationRepository) Transition(
	_ context.Context,
	_ *gorm.DB,
	id uuid.UUID,
	from ReservationStatus,
	to ReservationStatus,
) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	reservation, ok := r.s.reservations[id]
	if !ok || reservation.Status != from {
		return false, nil
	}
	reservation.Status = to
	reservation.ExpiresAt = nil
	r.s.reservations[id] = reservation
	return true, nil
}

func (r *reservationRepository) ExpireOverdue(
	_ context.Context,
	_ *gorm.DB,
	now time.Time,
	scope repositories.ReservationScope,
) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var expired int64
	for id, reservation := range r.s.reservations {
		if !inScope(reservation, scope) || !reservation.IsOverdue(now) {
			continue
		}
		reservation.Status = ReservationExpired
		r.s.reservations[id] = reservation
		expired++
	}
	return expired, nil
}

func (r *reservationRepository) DeleteForParty(_ context.Context, _ *gorm.DB, party Principal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, reservation := range r.s.reservations {
		if reservation.BelongsTo(party) {
			delete(r.s.reservations, id)
		}
	}
	return nil
}

// SetExpiresAt rewrites a stored hold so tests can age a reservation.
func (s *Store) SetExpiresAt(id uuid.UUID, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reservation := s.reservations[id]
	reservation.ExpiresAt = &at
	s.reservations[id] = reservation
}

func inScope(reservation Reservation, scope repositories.ReservationScope) bool {
	if scope.ID != nil && reservation.ID != *scope.ID {
		return false
	}
	if scope.CustomerID != nil && reservation.CustomerID != *scope.CustomerID {
		return false
	}
	if scope.OwnerID != nil && reservation.OwnerID != *scope.OwnerID {
		return false
	}
	return true
}
