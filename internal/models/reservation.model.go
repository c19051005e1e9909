package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const DateLayout = "2006-01-02"

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationExpired   ReservationStatus = "expired"
)

var reservationTransitions = map[ReservationStatus][]ReservationStatus{
	ReservationPending:   {ReservationConfirmed, ReservationCancelled, ReservationExpired},
	ReservationConfirmed: {ReservationCancelled},
}

// CanTransitionTo encodes the one-way reservation state machine.
func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	for _, allowed := range reservationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s ReservationStatus) IsTerminal() bool {
	return len(reservationTransitions[s]) == 0
}

type Reservation struct {
	BaseUUIDModel
	CustomerID   uuid.UUID         `gorm:"type:uuid;not null;index"                           json:"customerId"`
	Customer     *Customer         `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"  json:"customer,omitempty"`
	OwnerID      uuid.UUID         `gorm:"type:uuid;not null;index"                           json:"ownerId"`
	Owner        *Owner            `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"     json:"owner,omitempty"`
	ResourceKind ListingKind       `gorm:"type:text;not null;index:idx_reservations_resource" json:"resourceKind"`
	ResourceID   uuid.UUID         `gorm:"type:uuid;not null;index:idx_reservations_resource" json:"resourceId"`
	CheckIn      datatypes.Date    `gorm:"type:date;not null"                                 json:"checkIn"`
	CheckOut     datatypes.Date    `gorm:"type:date;not null"                                 json:"checkOut"`
	Guests       int               `gorm:"type:int;not null;default:1"                        json:"guests"`
	Status       ReservationStatus `gorm:"type:text;not null;default:'pending';index"         json:"status"`
	ExpiresAt    *time.Time        `gorm:"type:timestamptz"                                   json:"expiresAt"`
}

func (r *Reservation) CheckInDate() time.Time {
	return time.Time(r.CheckIn)
}

func (r *Reservation) CheckOutDate() time.Time {
	return time.Time(r.CheckOut)
}

// Overlaps applies the inclusive-inclusive rule: a stay ending on a day still
// occupies that day, so [a, b] and [b, c] conflict.
func (r *Reservation) Overlaps(checkIn, checkOut time.Time) bool {
	return !r.CheckInDate().After(checkOut) && !r.CheckOutDate().Before(checkIn)
}

// IsOverdue reports whether a pending hold has run past its expiry at now.
func (r *Reservation) IsOverdue(now time.Time) bool {
	return r.Status == ReservationPending && r.ExpiresAt != nil && !r.ExpiresAt.After(now)
}

func (r *Reservation) BelongsTo(p Principal) bool {
	switch p.Kind {
	case PrincipalCustomer:
		return r.CustomerID == p.ID
	case PrincipalOwner:
		return r.OwnerID == p.ID
	}
	return false
}
