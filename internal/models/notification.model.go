package models

import (
	"fmt"

	"github.com/google/uuid"
)

type NotificationKind string

const (
	NotificationNewUser              NotificationKind = "new_user"
	NotificationNewOwner             NotificationKind = "new_owner"
	NotificationNewReservation       NotificationKind = "new_reservation"
	NotificationReservationConfirmed NotificationKind = "reservation_confirmed"
	NotificationOfferApproved        NotificationKind = "offer_approved"
)

// Notification rows are append-only; only IsRead ever changes.
type Notification struct {
	BaseUUIDModel
	Kind                 NotificationKind `gorm:"type:text;not null;index"               json:"kind"`
	Title                string           `gorm:"type:text;not null"                     json:"title"`
	Message              string           `gorm:"type:text;not null"                     json:"message"`
	RelatedCustomerID    *uuid.UUID       `gorm:"type:uuid;index"                        json:"relatedCustomerId,omitempty"`
	RelatedOwnerID       *uuid.UUID       `gorm:"type:uuid;index"                        json:"relatedOwnerId,omitempty"`
	RelatedReservationID *uuid.UUID       `gorm:"type:uuid;index"                        json:"relatedReservationId,omitempty"`
	IsRead               bool             `gorm:"type:bool;not null;default:false;index" json:"isRead"`
}

// VisibleTo reports whether p may read or mark the notification. Admins see everything.
func (n *Notification) VisibleTo(p Principal) bool {
	switch p.Kind {
	case PrincipalAdmin:
		return true
	case PrincipalCustomer:
		return n.RelatedCustomerID != nil && *n.RelatedCustomerID == p.ID
	case PrincipalOwner:
		return n.RelatedOwnerID != nil && *n.RelatedOwnerID == p.ID
	}
	return false
}

// Recipients lists the non-admin principals the notification is addressed to.
func (n *Notification) Recipients() []Principal {
	var out []Principal
	if n.RelatedCustomerID != nil {
		out = append(out, NewPrincipal(PrincipalCustomer, *n.RelatedCustomerID))
	}
	if n.RelatedOwnerID != nil {
		out = append(out, NewPrincipal(PrincipalOwner, *n.RelatedOwnerID))
	}
	return out
}

func NewCustomerSignupNotification(c *Customer) *Notification {
	return &Notification{
		Kind:              NotificationNewUser,
		Title:             "New User Registration",
		Message:           fmt.Sprintf("New user %s has registered.", c.DisplayName()),
		RelatedCustomerID: uuidPtr(c.ID),
	}
}

func NewOwnerSignupNotification(o *Owner) *Notification {
	return &Notification{
		Kind:  NotificationNewOwner,
		Title: "New Owner Registration",
		Message: fmt.Sprintf(
			"New resort owner %s (%s) has registered.",
			o.DisplayName(),
			o.ResortDisplayName(),
		),
		RelatedOwnerID: uuidPtr(o.ID),
	}
}

func NewReservationNotification(
	r *Reservation,
	customerName string,
	resourceName string,
	resortName string,
) *Notification {
	return &Notification{
		Kind:  NotificationNewReservation,
		Title: "New Reservation Request",
		Message: fmt.Sprintf(
			"%s made a reservation for %s at %s.",
			customerName,
			resourceName,
			resortName,
		),
		RelatedCustomerID:    uuidPtr(r.CustomerID),
		RelatedOwnerID:       uuidPtr(r.OwnerID),
		RelatedReservationID: uuidPtr(r.ID),
	}
}

func NewReservationConfirmedNotification(
	r *Reservation,
	resourceName string,
	resortName string,
) *Notification {
	return &Notification{
		Kind:  NotificationReservationConfirmed,
		Title: "Reservation Confirmed",
		Message: fmt.Sprintf(
			"Your reservation for %s at %s has been confirmed!",
			resourceName,
			resortName,
		),
		RelatedCustomerID:    uuidPtr(r.CustomerID),
		RelatedReservationID: uuidPtr(r.ID),
	}
}

func NewOfferApprovedNotification(l *Listing) *Notification {
	return &Notification{
		Kind:  NotificationOfferApproved,
		Title: l.Kind.Title() + " Approved",
		Message: fmt.Sprintf(
			"Your %s \"%s\" has been approved and is now visible to customers!",
			l.Kind,
			l.Name,
		),
		RelatedOwnerID: uuidPtr(l.OwnerID),
	}
}

func uuidPtr(id uuid.UUID) *uuid.UUID {
	return &id
}
