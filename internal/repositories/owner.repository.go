package repositories

import (
	"context"

	"resorthub/internal/logger"
	. "resorthub/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OwnerRepository interface {
	Create(ctx context.Context, tx *gorm.DB, owner *Owner) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*Owner, error)
	GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*Owner, error)
	List(ctx context.Context, tx *gorm.DB) ([]*Owner, error)
	UpdateResortImages(
		ctx context.Context,
		tx *gorm.DB,
		id uuid.UUID,
		profileImage *string,
		backgroundImage *string,
	) error
	UpdateEntranceFee(ctx context.Context, tx *gorm.DB, id uuid.UUID, fee decimal.Decimal) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type ownerRepository struct{}

func NewOwnerRepository() OwnerRepository {
	return &ownerRepository{}
}

func (r *ownerRepository) Create(ctx context.Context, tx *gorm.DB, owner *Owner) error {
	log := logger.NewWithContext(ctx, "ownerRepository").Function("Create")

	if err := gorm.G[Owner](tx).Create(ctx, owner); err != nil {
		return log.Err("failed to create owner", translate(err), "username", owner.Username)
	}

	return nil
}

func (r *ownerRepository) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*Owner, error) {
	owner, err := gorm.G[Owner](tx).Where("id = ?", id).First(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return &owner, nil
}

func (r *ownerRepository) GetByUsername(
	ctx context.Context,
	tx *gorm.DB,
	username string,
) (*Owner, error) {
	owner, err := gorm.G[Owner](tx).Where("username = ?", username).First(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return &owner, nil
}

func (r *ownerRepository) List(ctx context.Context, tx *gorm.DB) ([]*Owner, error) {
	log := logger.NewWithContext(ctx, "ownerRepository").Function("List")

	owners, err := gorm.G[*Owner](tx).Order("created_at DESC, id DESC").Find(ctx)
	if err != nil {
		return nil, log.Err("failed to list owners", translate(err))
	}
	return owners, nil
}

// UpdateResortImages only touches the images that were supplied.
func (r *ownerRepository) UpdateResortImages(
	ctx context.Context,
	tx *gorm.DB,
	id uuid.UUID,
	profileImage *string,
	backgroundImage *string,
) error {
	log := logger.NewWithContext(ctx, "ownerRepository").Function("UpdateResortImages")

	updates := map[string]any{}
	if profileImage != nil {
		updates["resort_profile_image"] = *profileImage
	}
	if backgroundImage != nil {
		updates["resort_background_image"] = *backgroundImage
	}
	if len(updates) == 0 {
		return nil
	}

	result := tx.WithContext(ctx).Model(&Owner{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return log.Err("failed to update resort images", translate(result.Error), "ownerID", id)
	}
	if result.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *ownerRepository) UpdateEntranceFee(
	ctx context.Context,
	tx *gorm.DB,
	id uuid.UUID,
	fee decimal.Decimal,
) error {
	log := logger.NewWithContext(ctx, "ownerRepository").Function("UpdateEntranceFee")

	result := tx.WithContext(ctx).Model(&Owner{}).Where("id = ?", id).Update("entrance_fee", fee)
	if result.Error != nil {
		return log.Err("failed to update entrance fee", translate(result.Error), "ownerID", id)
	}
	if result.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *ownerRepository) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	log := logger.NewWithContext(ctx, "ownerRepository").Function("Delete")

	rows, err := gorm.G[Owner](tx).Where("id = ?", id).Delete(ctx)
	if err != nil {
		return log.Err("failed to delete owner", translate(err), "ownerID", id)
	}
	if rows == 0 {
		return translate(gorm.ErrRecordNotFound)
	}
	return nil
}
