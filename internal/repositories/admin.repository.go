package repositories

import (
	"context"

	"resorthub/internal/logger"
	. "resorthub/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AdminRepository interface {
	Create(ctx context.Context, tx *gorm.DB, admin *Admin) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*Admin, error)
	GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*Admin, error)
	// First returns the admin every admin conversation is routed to.
	First(ctx context.Context, tx *gorm.DB) (*Admin, error)
}

type adminRepository struct{}

func NewAdminRepository() AdminRepository {
	return &adminRepository{}
}

func (r *adminRepository) Create(ctx context.Context, tx *gorm.DB, admin *Admin) error {
	log := logger.NewWithContext(ctx, "adminRepository").Function("Create")

	if err := gorm.G[Admin](tx).Create(ctx, admin); err != nil {
		return log.Err("failed to create admin", translate(err), "username", admin.Username)
	}
	return nil
}

func (r *adminRepository) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*Admin, error) {
	admin, err := gorm.G[Admin](tx).Where("id = ?", id).First(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return &admin, nil
}

func (r *adminRepository) GetByUsername(
	ctx context.Context,
	tx *gorm.DB,
	username string,
) (*Admin, error) {
	admin, err := gorm.G[Admin](tx).Where("username = ?", username).First(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return &admin, nil
}

func (r *adminRepository) First(ctx context.Context, tx *gorm.DB) (*Admin, error) {
	admin, err := gorm.G[Admin](tx).Order("created_at ASC, id ASC").First(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return &admin, nil
}
