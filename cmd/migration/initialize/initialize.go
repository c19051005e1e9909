package initialize

import (
	"context"
	"errors"

	"resorthub/config"
	"resorthub/internal/apperror"
	"resorthub/internal/logger"
	. "resorthub/internal/models"
	"resorthub/internal/repositories"

	authController "resorthub/internal/controllers/auth"

	"gorm.io/gorm"
)

const DEFAULT_ADMIN_USERNAME = "admin"

// InitializeTables inserts the rows every deployment needs. It is safe to rerun.
func InitializeTables(db *gorm.DB, config config.Config, log logger.Logger) error {
	log = log.Function("InitializeTables")
	log.Info("Initializing essential production data")

	if err := initializeAdmin(db, config, log); err != nil {
		return log.Err("failed to initialize admin", err)
	}

	log.Info("Table initialization complete")
	return nil
}

// initializeAdmin creates the single admin account that receives every admin
// conversation. Nothing is created when an admin already exists.
func initializeAdmin(db *gorm.DB, config config.Config, log logger.Logger) error {
	log = log.Function("initializeAdmin")
	ctx := context.Background()
	admins := repositories.NewAdminRepository()

	existing, err := admins.First(ctx, db)
	if err == nil {
		log.Debug("Admin already exists", "username", existing.Username)
		return nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return log.Err("failed to look up admin", err)
	}

	if config.AdminDefaultPassword == "" {
		log.Warn("ADMIN_DEFAULT_PASSWORD is not set, skipping admin creation")
		return nil
	}

	hash, err := authController.HashPassword(config.AdminDefaultPassword)
	if err != nil {
		return log.Err("failed to hash admin password", err)
	}

	admin := &Admin{
		Username:     DEFAULT_ADMIN_USERNAME,
		PasswordHash: hash,
		Name:         "Administrator",
	}
	if err := admins.Create(ctx, db, admin); err != nil {
		return log.Err("failed to create admin", err)
	}

	log.Info("Created default admin", "username", admin.Username)
	return nil
}
