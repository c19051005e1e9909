package repositories

import (
	"context"

	"resorthub/internal/logger"
	. "resorthub/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CustomerRepository interface {
	Create(ctx context.Context, tx *gorm.DB, customer *Customer) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*Customer, error)
	GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*Customer, error)
	List(ctx context.Context, tx *gorm.DB) ([]*Customer, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type customerRepository struct{}

func NewCustomerRepository() CustomerRepository {
	return &customerRepository{}
}

func (r *customerRepository) Create(ctx context.Context, tx *gorm.DB, customer *Customer) error {
	log := logger.NewWithContext(ctx, "customerRepository").Function("Create")

	if err := gorm.G[Customer](tx).Create(ctx, customer); err != nil {
		return log.Err("failed to create customer", translate(err), "username", customer.Username)
	}

	return nil
}

func (r *customerRepository) GetByID(
	ctx context.Context,
	tx *gorm.DB,
	id uuid.UUID,
) (*Customer, error) {
	customer, err := gorm.G[Customer](tx).Where("id = ?", id).First(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return &customer, nil
}

func (r *customerRepository) GetByUsername(
	ctx context.Context,
	tx *gorm.DB,
	username string,
) (*Customer, error) {
	customer, err := gorm.G[Customer](tx).Where("username = ?", username).First(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return &customer, nil
}

func (r *customerRepository) List(ctx context.Context, tx *gorm.DB) ([]*Customer, error) {
	log := logger.NewWithContext(ctx, "customerRepository").Function("List")

	customers, err := gorm.G[*Customer](tx).Order("created_at DESC, id DESC").Find(ctx)
	if err != nil {
		return nil, log.Err("failed to list customers", translate(err))
	}
	return customers, nil
}

func (r *customerRepository) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	log := logger.NewWithContext(ctx, "customerRepository").Function("Delete")

	rows, err := gorm.G[Customer](tx).Where("id = ?", id).Delete(ctx)
	if err != nil {
		return log.Err("failed to delete customer", translate(err), "customerID", id)
	}
	if rows == 0 {
		return translate(gorm.ErrRecordNotFound)
	}
	return nil
}
