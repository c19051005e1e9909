package repositories

import (
	"errors"

	"resorthub/internal/apperror"
	"resorthub/internal/database"

	"gorm.io/gorm"
)

type Repository struct {
	Customer     CustomerRepository
	Owner        OwnerRepository
	Admin        AdminRepository
	Listing      ListingRepository
	Reservation  ReservationRepository
	Conversation ConversationRepository
	Message      MessageRepository
	Notification NotificationRepository
}

func New(db database.DB) Repository {
	return Repository{
		Customer:     NewCustomerRepository(),
		Owner:        NewOwnerRepository(),
		Admin:        NewAdminRepository(),
		Listing:      NewListingRepository(db.Cache.Catalog),
		Reservation:  NewReservationRepository(),
		Conversation: NewConversationRepository(),
		Message:      NewMessageRepository(),
		Notification: NewNotificationRepository(),
	}
}

// translate maps gorm failures onto the shared error taxonomy. Missing rows
// become NotFound, unique violations become Conflict and anything else is a
// store failure.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperror.ErrNotFound.Wrap(err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperror.ErrUsernameTaken.Wrap(err)
	default:
		return apperror.Store(err)
	}
}
