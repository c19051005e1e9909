package seed

import (
	"resorthub/config"
	"resorthub/internal/logger"
	. "resorthub/internal/models"

	authController "resorthub/internal/controllers/auth"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const DEMO_PASSWORD = "password"

func intPtr(i int) *int {
	return &i
}

func stringPtr(s string) *string {
	return &s
}

// Seed fills a fresh development database with one customer and one resort.
func Seed(db *gorm.DB, config config.Config, log logger.Logger) error {
	log = log.Function("seed")
	log.Info("Seeding development data")

	hash, err := authController.HashPassword(DEMO_PASSWORD)
	if err != nil {
		return log.Err("failed to hash demo password", err)
	}

	customer := Customer{
		Username:     "jane",
		PasswordHash: hash,
		Name:         "Jane Cruz",
		Email:        "jane@example.com",
	}
	if err := db.Create(&customer).Error; err != nil {
		return log.Err("failed to create customer", err, "username", customer.Username)
	}

	fee := decimal.NewFromInt(50)
	owner := Owner{
		Username:      "sunny",
		PasswordHash:  hash,
		Name:          "Ramon Santos",
		Email:         "sunny@example.com",
		ResortName:    "Sunny Resort",
		ResortAddress: "Batangas",
		EntranceFee:   &fee,
	}
	if err := db.Create(&owner).Error; err != nil {
		return log.Err("failed to create owner", err, "username", owner.Username)
	}

	listings := []Listing{
		{
			Kind:     ListingRoom,
			Name:     "Deluxe Room",
			Price:    decimal.NewFromInt(2500),
			Capacity: 2,
			Beds:     intPtr(1),
			Size:     stringPtr("24 sqm"),
			Features: datatypes.JSONSlice[string]{"Air conditioning", "Sea view"},
			Status:   ListingApproved,
		},
		{
			Kind:     ListingCottage,
			Name:     "Beach Cottage",
			Price:    decimal.NewFromInt(1200),
			Capacity: 8,
			Features: datatypes.JSONSlice[string]{"Grill"},
			Status:   ListingApproved,
		},
		{
			Kind:     ListingFood,
			Name:     "Grilled Tilapia",
			Price:    decimal.NewFromInt(350),
			Features: datatypes.JSONSlice[string]{},
			Status:   ListingPending,
		},
	}
	for _, listing := range listings {
		listing.OwnerID = owner.ID
		if err := db.Create(&listing).Error; err != nil {
			return log.Err("failed to create listing", err, "name", listing.Name)
		}
		log.Info("Seeded listing", "name", listing.Name, "status", listing.Status)
	}

	log.Info("Seeding complete", "customer", customer.Username, "owner", owner.Username)
	return nil
}
