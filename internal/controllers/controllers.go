package controllers

import (
	"resorthub/config"
	"resorthub/internal/database"
	"resorthub/internal/repositories"
	"resorthub/internal/services"

	adminController "resorthub/internal/controllers/admin"
	authController "resorthub/internal/controllers/auth"
	listingController "resorthub/internal/controllers/listings"
	messagingController "resorthub/internal/controllers/messaging"
	notificationController "resorthub/internal/controllers/notifications"
	reservationController "resorthub/internal/controllers/reservations"
)

type Controllers struct {
	Auth         authController.AuthControllerInterface
	Reservation  reservationController.ReservationControllerInterface
	Messaging    messagingController.MessagingControllerInterface
	Notification notificationController.NotificationControllerInterface
	Listing      listingController.ListingControllerInterface
	Admin        adminController.AdminControllerInterface
}

func New(
	services services.Service,
	repos repositories.Repository,
	config config.Config,
	db database.DB,
) Controllers {
	return Controllers{
		Auth:         authController.New(repos, services, db),
		Reservation:  reservationController.New(repos, services, config, db),
		Messaging:    messagingController.New(repos, services, db),
		Notification: notificationController.New(repos, db),
		Listing:      listingController.New(repos, services, db),
		Admin:        adminController.New(repos, services, db),
	}
}
