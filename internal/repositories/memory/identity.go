package memory

import (
	"context"
	"strings"

	"resorthub/internal/apperror"
	. "resorthub/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type customerRepository struct{ s *Store }

func (r *customerRepository) Create(_ context.Context, _ *gorm.DB, customer *Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	customer.Username = strings.TrimSpace(customer.Username)
	if customer.Username == "" {
		return apperror.ErrMissingField
	}
	for _, existing := range r.s.customers {
		if existing.Username == customer.Username {
			return apperror.ErrUsernameTaken
		}
	}
	if err := r.s.stamp(&customer.BaseUUIDModel); err != nil {
		return apperror.Store(err)
	}
	r.s.customers[customer.ID] = *customer
	return nil
}

func (r *customerRepository) GetByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	customer, ok := r.s.customers[id]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	return &customer, nil
}

func (r *customerRepository) GetByUsername(_ context.Context, _ *gorm.DB, username string) (*Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, customer := range r.s.customers {
		if customer.Username == username {
			return &customer, nil
		}
	}
	return nil, apperror.ErrNotFound
}

func (r *customerRepository) List(_ context.Context, _ *gorm.DB) ([]*Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]*Customer, 0, len(r.s.customers))
	for _, customer := range r.s.customers {
		out = append(out, &customer)
	}
	sortNewest(r.s, out, func(c *Customer) uuid.UUID { return c.ID })
	return out, nil
}

func (r *customerRepository) Delete(_ context.Context, _ *gorm.DB, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.customers[id]; !ok {
		return apperror.ErrNotFound
	}
	delete(r.s.customers, id)
	return nil
}

type ownerRepository struct{ s *Store }

func (r *ownerRepository) Create(_ context.Context, _ *gorm.DB, owner *Owner) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	owner.Username = strings.TrimSpace(owner.Username)
	if owner.Username == "" {
		return apperror.ErrMissingField
	}
	for _, existing := range r.s.owners {
		if existing.Username == owner.Username {
			return apperror.ErrUsernameTaken
		}
	}
	if err := r.s.stamp(&owner.BaseUUIDModel); err != nil {
		return apperror.Store(err)
	}
	r.s.owners[owner.ID] = *owner
	return nil
}

func (r *ownerRepository) GetByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*Owner, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	owner, ok := r.s.owners[id]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	return &owner, nil
}

func (r *ownerRepository) GetByUsername(_ context.Context, _ *gorm.DB, username string) (*Owner, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, owner := range r.s.owners {
		if owner.Username == username {
			return &owner, nil
		}
	}
	return nil, apperror.ErrNotFound
}

func (r *ownerRepository) List(_ context.Context, _ *gorm.DB) ([]*Owner, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]*Owner, 0, len(r.s.owners))
	for _, owner := range r.s.owners {
		out = append(out, &owner)
	}
	sortNewest(r.s, out, func(o *Owner) uuid.UUID { return o.ID })
	return out, nil
}

func (r *ownerRepository) UpdateResortImages(
	_ context.Context,
	_ *gorm.DB,
	id uuid.UUID,
	profileImage *string,
	backgroundImage *string,
) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	owner, ok := r.s.owners[id]
	if !ok {
		return apperror.ErrNotFound
	}
	if profileImage != nil {
		owner.ResortProfileImage = *profileImage
	}
	if backgroundImage != nil {
		owner.ResortBackgroundImage = *backgroundImage
	}
	r.s.owners[id] = owner
	return nil
}

func (r *ownerRepository) UpdateEntranceFee(_ context.Context, _ *gorm.DB, id uuid.UUID, fee decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	owner, ok := r.s.owners[id]
	if !ok {
		return apperror.ErrNotFound
	}
	owner.EntranceFee = &fee
	r.s.owners[id] = owner
	return nil
}

func (r *ownerRepository) Delete(_ context.Context, _ *gorm.DB, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.owners[id]; !ok {
		return apperror.ErrNotFound
	}
	delete(r.s.owners, id)
	return nil
}

type adminRepository struct{ s *Store }

func (r *adminRepository) Create(_ context.Context, _ *gorm.DB, admin *Admin) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.admins {
		if existing.Username == admin.Username {
			return apperror.ErrUsernameTaken
		}
	}
	if err := r.s.stamp(&admin.BaseUUIDModel); err != nil {
		return apperror.Store(err)
	}
	r.s.admins[admin.ID] = *admin
	return nil
}

func (r *adminRepository) GetByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*Admin, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	admin, ok := r.s.admins[id]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	return &admin, nil
}

func (r *adminRepository) GetByUsername(_ context.Context, _ *gorm.DB, username string) (*Admin, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, admin := range r.s.admins {
		if admin.Username == username {
			return &admin, nil
		}
	}
	return nil, apperror.ErrNotFound
}

func (r *adminRepository) First(_ context.Context, _ *gorm.DB) (*Admin, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	admins := make([]*Admin, 0, len(r.s.admins))
	for _, admin := range r.s.admins {
		admins = append(admins, &admin)
	}
	if len(admins) == 0 {
		return nil, apperror.ErrNotFound
	}
	sortOldest(r.s, admins, func(a *Admin) uuid.UUID { return a.ID })
	return admins[0], nil
}
