package repositories

import (
	"context"

	"resorthub/internal/constants"
	"resorthub/internal/database"
	"resorthub/internal/logger"
	. "resorthub/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ListingFilter struct {
	IDs     []uuid.UUID
	OwnerID *uuid.UUID
	Kind    *ListingKind
	Status  *ListingStatus
}

type ListingRepository interface {
	Create(ctx context.Context, tx *gorm.DB, listing *Listing) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*Listing, error)
	// LockByID reads the listing with SELECT ... FOR UPDATE. Callers must be in a transaction.
	LockByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*Listing, error)
	List(ctx context.Context, tx *gorm.DB, filter ListingFilter) ([]*Listing, error)
	Update(ctx context.Context, tx *gorm.DB, listing *Listing) error
	ReplaceImages(ctx context.Context, tx *gorm.DB, listingID uuid.UUID, images []ListingImage) error
	SetStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status ListingStatus) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	DeleteByOwner(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) ([]string, error)

	ListApproved(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, kind ListingKind) ([]*Listing, error)
	ClearOwnerCache(ctx context.Context, ownerID uuid.UUID)
}

type listingRepository struct {
	cache database.CacheClient
}

func NewListingRepository(cache database.CacheClient) ListingRepository {
	return &listingRepository{cache: cache}
}

func (r *listingRepository) Create(ctx context.Context, tx *gorm.DB, listing *Listing) error {
	log := logger.NewWithContext(ctx, "listingRepository").Function("Create")

	if err := tx.WithContext(ctx).Create(listing).Error; err != nil {
		return log.Err(
			"failed to create listing",
			translate(err),
			"ownerID", listing.OwnerID,
			"kind", listing.Kind,
		)
	}
	return nil
}

func (r *listingRepository) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*Listing, error) {
	var listing Listing
	err := tx.WithContext(ctx).
		Preload("Images", orderByPosition).
		Where("id = ?", id).
		First(&listing).Error
	if err != nil {
		return nil, translate(err)
	}
	return &listing, nil
}

func (r *listingRepository) LockByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*Listing, error) {
	var listing Listing
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&listing).Error
	if err != nil {
		return nil, translate(err)
	}
	return &listing, nil
}

func (r *listingRepository) List(
	ctx context.Context,
	tx *gorm.DB,
	filter ListingFilter,
) ([]*Listing, error) {
	log := logger.NewWithContext(ctx, "listingRepository").Function("List")

	query := tx.WithContext(ctx).Preload("Images", orderByPosition)
	if len(filter.IDs) > 0 {
		query = query.Where("id IN ?", filter.IDs)
	}
	if filter.OwnerID != nil {
		query = query.Where("owner_id = ?", *filter.OwnerID)
	}
	if filter.Kind != nil {
		query = query.Where("kind = ?", *filter.Kind)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var listings []*Listing
	if err := query.Order("created_at DESC, id DESC").Find(&listings).Error; err != nil {
		return nil, log.Err("failed to list listings", translate(err))
	}
	return listings, nil
}

// Update writes the scalar columns only. Images go through ReplaceImages.
func (r *listingRepository) Update(ctx context.Context, tx *gorm.DB, listing *Listing) error {
	log := logger.NewWithContext(ctx, "listingRepository").Function("Update")

	result := tx.WithContext(ctx).
		Model(&Listing{}).
		Where("id = ?", listing.ID).
		Select("name", "price", "capacity", "beds", "size", "features", "status", "updated_at").
		Updates(listing)
	if result.Error != nil {
		return log.Err("failed to update listing", translate(result.Error), "listingID", listing.ID)
	}
	if result.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *listingRepository) ReplaceImages(
	ctx context.Context,
	tx *gorm.DB,
	listingID uuid.UUID,
	images []ListingImage,
) error {
	log := logger.NewWithContext(ctx, "listingRepository").Function("ReplaceImages")

	if _, err := gorm.G[ListingImage](tx).Where("listing_id = ?", listingID).Delete(ctx); err != nil {
		return log.Err("failed to delete listing images", translate(err), "listingID", listingID)
	}
	if len(images) == 0 {
		return nil
	}

	for i := range images {
		images[i].ListingID = listingID
	}
	if err := tx.WithContext(ctx).Create(&images).Error; err != nil {
		return log.Err("failed to create listing images", translate(err), "listingID", listingID)
	}
	return nil
}

func (r *listingRepository) SetStatus(
	ctx context.Context,
	tx *gorm.DB,
	id uuid.UUID,
	status ListingStatus,
) error {
	log := logger.NewWithContext(ctx, "listingRepository").Function("SetStatus")

	rows, err := gorm.G[Listing](tx).Where("id = ?", id).Update(ctx, "status", status)
	if err != nil {
		return log.Err("failed to set listing status", translate(err), "listingID", id)
	}
	if rows == 0 {
		return translate(gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *listingRepository) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	log := logger.NewWithContext(ctx, "listingRepository").Function("Delete")

	if _, err := gorm.G[ListingImage](tx).Where("listing_id = ?", id).Delete(ctx); err != nil {
		return log.Err("failed to delete listing images", translate(err), "listingID", id)
	}

	rows, err := gorm.G[Listing](tx).Where("id = ?", id).Delete(ctx)
	if err != nil {
		return log.Err("failed to delete listing", translate(err), "listingID", id)
	}
	if rows == 0 {
		return translate(gorm.ErrRecordNotFound)
	}
	return nil
}

// DeleteByOwner removes every listing of the owner and returns the image
// public ids so the caller can clean up the image store after commit.
func (r *listingRepository) DeleteByOwner(
	ctx context.Context,
	tx *gorm.DB,
	ownerID uuid.UUID,
) ([]string, error) {
	log := logger.NewWithContext(ctx, "listingRepository").Function("DeleteByOwner")

	var publicIDs []string
	err := tx.WithContext(ctx).
		Model(&ListingImage{}).
		Joins("JOIN listings ON listings.id = listing_images.listing_id").
		Where("listings.owner_id = ? AND listing_images.public_id <> ''", ownerID).
		Pluck("listing_images.public_id", &publicIDs).Error
	if err != nil {
		return nil, log.Err("failed to collect listing images", translate(err), "ownerID", ownerID)
	}

	err = tx.WithContext(ctx).
		Where("listing_id IN (?)", tx.Model(&Listing{}).Select("id").Where("owner_id = ?", ownerID)).
		Delete(&ListingImage{}).Error
	if err != nil {
		return nil, log.Err("failed to delete listing images", translate(err), "ownerID", ownerID)
	}

	if _, err := gorm.G[Listing](tx).Where("owner_id = ?", ownerID).Delete(ctx); err != nil {
		return nil, log.Err("failed to delete listings", translate(err), "ownerID", ownerID)
	}

	return publicIDs, nil
}

// ListApproved is the public browse read, served from the catalog cache.
func (r *listingRepository) ListApproved(
	ctx context.Context,
	tx *gorm.DB,
	ownerID uuid.UUID,
	kind ListingKind,
) ([]*Listing, error) {
	log := logger.NewWithContext(ctx, "listingRepository").Function("ListApproved")

	key := listingCacheKey(ownerID, kind)
	var cached []*Listing
	if r.cache != nil {
		found, err := database.NewCacheBuilder(r.cache, key).
			WithContext(ctx).
			WithHash(constants.ListingCachePrefix).
			Get(&cached)
		if err != nil {
			log.Warn("failed to read listings from cache", "key", key, "error", err)
		}
		if found {
			return cached, nil
		}
	}

	approved := ListingApproved
	listings, err := r.List(ctx, tx, ListingFilter{OwnerID: &ownerID, Kind: &kind, Status: &approved})
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		err = database.NewCacheBuilder(r.cache, key).
			WithContext(ctx).
			WithHash(constants.ListingCachePrefix).
			WithStruct(listings).
			WithTTL(constants.ListingCacheExpiry).
			Set()
		if err != nil {
			log.Warn("failed to cache listings", "key", key, "error", err)
		}
	}

	return listings, nil
}

func (r *listingRepository) ClearOwnerCache(ctx context.Context, ownerID uuid.UUID) {
	if r.cache == nil {
		return
	}

	keys := make([]string, 0, len(ListingKinds))
	for _, kind := range ListingKinds {
		keys = append(keys, listingCacheKey(ownerID, kind))
	}

	err := database.NewCacheBuilder(r.cache, keys).
		WithContext(ctx).
		WithHash(constants.ListingCachePrefix).
		Delete()
	if err != nil {
		logger.NewWithContext(ctx, "listingRepository").
			Function("ClearOwnerCache").
			Warn("failed to clear listing cache", "ownerID", ownerID, "error", err)
	}
}

func listingCacheKey(ownerID uuid.UUID, kind ListingKind) string {
	return ownerID.String() + ":" + string(kind)
}

func orderByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}
