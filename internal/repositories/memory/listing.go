package memory

import (
	"context"
	"sort"

	"resorthub/internal/apperror"
	. "resorthub/internal/models"
	"resorthub/internal/repositories"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type listingRepository struct{ s *Store }

func (r *listingRepository) Create(_ context.Context, _ *gorm.DB, listing *Listing) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := listing.Validate(); err != nil {
		return apperror.ErrInvalidInput.WithMessage(err.Error())
	}
	if listing.Status == "" {
		listing.Status = ListingPending
	}
	if err := r.s.stamp(&listing.BaseUUIDModel); err != nil {
		return apperror.Store(err)
	}
	for i := range listing.Images {
		if err := listing.Images[i].EnsureID(); err != nil {
			return apperror.Store(err)
		}
		listing.Images[i].ListingID = listing.ID
	}
	r.s.listings[listing.ID] = cloneListing(*listing)
	return nil
}

func (r *listingRepository) GetByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*Listing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	listing, ok := r.s.listings[id]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	out := cloneListing(listing)
	return &out, nil
}

func (r *listingRepository) LockByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*Listing, error) {
	return r.GetByID(ctx, tx, id)
}

func (r *listingRepository) List(
	_ context.Context,
	_ *gorm.DB,
	filter repositories.ListingFilter,
) ([]*Listing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ids := make(map[uuid.UUID]bool, len(filter.IDs))
	for _, id := range filter.IDs {
		ids[id] = true
	}

	var out []*Listing
	for _, listing := range r.s.listings {
		if len(ids) > 0 && !ids[listing.ID] {
			continue
		}
		if filter.OwnerID != nil && listing.OwnerID != *filter.OwnerID {
			continue
		}
		if filter.Kind != nil && listing.Kind != *filter.Kind {
			continue
		}
		if filter.Status != nil && listing.Status != *filter.Status {
			continue
		}
		clone := cloneListing(listing)
		out = append(out, &clone)
	}
	sortNewest(r.s, out, func(l *Listing) uuid.UUID { return l.ID })
	return out, nil
}

func (r *listingRepository) Update(_ context.Context, _ *gorm.DB, listing *Listing) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.listings[listing.ID]
	if !ok {
		return apperror.ErrNotFound
	}
	stored.Name = listing.Name
	stored.Price = listing.Price
	stored.Capacity = listing.Capacity
	stored.Beds = listing.Beds
	stored.Size = listing.Size
	stored.Features = listing.Features
	stored.Status = listing.Status
	r.s.listings[listing.ID] = stored
	return nil
}

func (r *listingRepository) ReplaceImages(
	_ context.Context,
	_ *gorm.DB,
	listingID uuid.UUID,
	images []ListingImage,
) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.listings[listingID]
	if !ok {
		return apperror.ErrNotFound
	}
	stored.Images = append([]ListingImage(nil), images...)
	for i := range stored.Images {
		if err := stored.Images[i].EnsureID(); err != nil {
			return apperror.Store(err)
		}
		stored.Images[i].ListingID = listingID
	}
	r.s.listings[listingID] = stored
	return nil
}

func (r *listingRepository) SetStatus(_ context.Context, _ *gorm.DB, id uuid.UUID, status ListingStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.listings[id]
	if !ok {
		return apperror.ErrNotFound
	}
	stored.Status = status
	r.s.listings[id] = stored
	return nil
}

func (r *listingRepository) Delete(_ context.Context, _ *gorm.DB, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.listings[id]; !ok {
		return apperror.ErrNotFound
	}
	delete(r.s.listings, id)
	return nil
}

func (r *listingRepository) DeleteByOwner(_ context.Context, _ *gorm.DB, ownerID uuid.UUID) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var publicIDs []string
	for id, listing := range r.s.listings {
		if listing.OwnerID != ownerID {
			continue
		}
		publicIDs = append(publicIDs, listing.PublicIDs()...)
		delete(r.s.listings, id)
	}
	sort.Strings(publicIDs)
	return publicIDs, nil
}

func (r *listingRepository) ListApproved(
	ctx context.Context,
	tx *gorm.DB,
	ownerID uuid.UUID,
	kind ListingKind,
) ([]*Listing, error) {
	status := ListingApproved
	return r.List(ctx, tx, repositories.ListingFilter{OwnerID: &ownerID, Kind: &kind, Status: &status})
}

func (r *listingRepository) ClearOwnerCache(_ context.Context, ownerID uuid.UUID) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.ClearedCaches[ownerID]++
}

func cloneListing(l Listing) Listing {
	l.Images = append([]ListingImage(nil), l.Images...)
	sort.SliceStable(l.Images, func(i, j int) bool { return l.Images[i].Position < l.Images[j].Position })
	return l
}
