package listingController

import (
	"context"
	"io"
	"strings"

	"resorthub/internal/apperror"
	"resorthub/internal/database"
	"resorthub/internal/logger"
	. "resorthub/internal/models"
	"resorthub/internal/repositories"
	"resorthub/internal/services"
	"resorthub/internal/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ListingControllerInterface interface {
	Create(ctx context.Context, owner Principal, input ListingInput, images []ImageUpload) (*Listing, error)
	Update(ctx context.Context, owner Principal, id uuid.UUID, input ListingInput, images []ImageUpload) (*Listing, error)
	Delete(ctx context.Context, owner Principal, id uuid.UUID) error
	OwnerListings(ctx context.Context, owner Principal) ([]*Listing, error)
	Browse(ctx context.Context, ownerID uuid.UUID, kind string) ([]*Listing, error)
	Resort(ctx context.Context, ownerID uuid.UUID) (*ResortView, error)
	UpdateResortImages(ctx context.Context, owner Principal, profile *ImageUpload, background *ImageUpload) (*ResortView, error)
	UpdateEntranceFee(ctx context.Context, owner Principal, fee string) (*ResortView, error)
}

// ListingInput carries the editable listing fields. Kind is only read on create.
type ListingInput struct {
	Kind     string   `json:"kind"     validate:"omitempty,oneof=room cottage food activity"`
	Name     string   `json:"name"     validate:"required,max=200"`
	Price    string   `json:"price"    validate:"required"`
	Capacity int      `json:"capacity" validate:"gte=0"`
	Beds     *int     `json:"beds"     validate:"omitempty,gte=0"`
	Size     *string  `json:"size"`
	Features []string `json:"features"`
}

// ImageUpload is one file from a multipart form. The caller closes Reader.
type ImageUpload struct {
	Filename string
	Reader   io.Reader
}

type ResortView struct {
	OwnerID         uuid.UUID                  `json:"ownerId"`
	ResortName      string                     `json:"resortName"`
	ResortAddress   string                     `json:"resortAddress,omitempty"`
	ContactNumber   string                     `json:"contactNumber,omitempty"`
	ProfileImage    string                     `json:"profileImage,omitempty"`
	BackgroundImage string                     `json:"backgroundImage,omitempty"`
	EntranceFee     *decimal.Decimal           `json:"entranceFee,omitempty"`
	Listings        map[ListingKind][]*Listing `json:"listings"`
}

type ListingController struct {
	listingRepo repositories.ListingRepository
	ownerRepo   repositories.OwnerRepository
	images      services.ImageStore
	transaction services.Transactor
	db          *gorm.DB
	log         logger.Logger
}

func New(
	repos repositories.Repository,
	services services.Service,
	db database.DB,
) ListingControllerInterface {
	return &ListingController{
		listingRepo: repos.Listing,
		ownerRepo:   repos.Owner,
		images:      services.Images,
		transaction: services.Transaction,
		db:          db.SQL,
		log:         logger.New("listingController"),
	}
}

// Create stores a pending listing. Images are uploaded first and removed
// again when the insert fails.
func (c *ListingController) Create(
	ctx context.Context,
	owner Principal,
	input ListingInput,
	images []ImageUpload,
) (*Listing, error) {
	log := c.log.TraceFromContext(ctx).Function("Create")

	if !owner.IsOwner() {
		return nil, apperror.ErrNotAuthorized
	}
	if strings.TrimSpace(input.Kind) == "" {
		return nil, apperror.ErrMissingField.WithMessage("kind is required")
	}

	listing := &Listing{OwnerID: owner.ID, Kind: ListingKind(input.Kind), Status: ListingPending}
	if err := applyInput(listing, input); err != nil {
		return nil, err
	}
	if len(images) > MaxListingImages {
		return nil, apperror.ErrInvalidInput.WithMessage(ErrListingTooManyImage.Error())
	}

	uploaded, err := c.upload(ctx, listing.Kind, owner.ID, images)
	if err != nil {
		return nil, err
	}
	listing.Images = uploaded

	if err := c.listingRepo.Create(ctx, c.db, listing); err != nil {
		c.deleteImages(ctx, imagePublicIDs(uploaded))
		return nil, log.Err("failed to create listing", apperror.Store(err), "ownerID", owner.ID)
	}

	log.Info("listing submitted for review", "listingID", listing.ID, "kind", listing.Kind)
	return listing, nil
}

// Update rewrites the listing and sends it back to review. New images, when
// given, replace the old set; the old files are removed after commit.
func (c *ListingController) Update(
	ctx context.Context,
	owner Principal,
	id uuid.UUID,
	input ListingInput,
	images []ImageUpload,
) (*Listing, error) {
	log := c.log.TraceFromContext(ctx).Function("Update")

	listing, err := c.owned(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if input.Kind != "" && ListingKind(input.Kind) != listing.Kind {
		return nil, apperror.ErrInvalidInput.WithMessage("kind cannot be changed")
	}
	if err := applyInput(listing, input); err != nil {
		return nil, err
	}
	if len(images) > MaxListingImages {
		return nil, apperror.ErrInvalidInput.WithMessage(ErrListingTooManyImage.Error())
	}
	listing.Status = ListingPending

	uploaded, err := c.upload(ctx, listing.Kind, owner.ID, images)
	if err != nil {
		return nil, err
	}

	replaced := listing.PublicIDs()
	err = c.transaction.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if err := c.listingRepo.Update(ctx, tx, listing); err != nil {
			return err
		}
		if len(uploaded) == 0 {
			return nil
		}
		return c.listingRepo.ReplaceImages(ctx, tx, listing.ID, uploaded)
	})
	if err != nil {
		c.deleteImages(ctx, imagePublicIDs(uploaded))
		return nil, log.Err("failed to update listing", apperror.Store(err), "listingID", id)
	}

	if len(uploaded) > 0 {
		c.deleteImages(ctx, replaced)
	}
	c.listingRepo.ClearOwnerCache(ctx, owner.ID)

	return c.listingRepo.GetByID(ctx, c.db, id)
}

func (c *ListingController) Delete(ctx context.Context, owner Principal, id uuid.UUID) error {
	listing, err := c.owned(ctx, owner, id)
	if err != nil {
		return err
	}

	if err := c.listingRepo.Delete(ctx, c.db, listing.ID); err != nil {
		return apperror.Store(err)
	}

	c.deleteImages(ctx, listing.PublicIDs())
	c.listingRepo.ClearOwnerCache(ctx, owner.ID)
	return nil
}

func (c *ListingController) OwnerListings(ctx context.Context, owner Principal) ([]*Listing, error) {
	if !owner.IsOwner() {
		return nil, apperror.ErrNotAuthorized
	}

	listings, err := c.listingRepo.List(ctx, c.db, repositories.ListingFilter{OwnerID: &owner.ID})
	if err != nil {
		return nil, apperror.Store(err)
	}
	return nonNil(listings), nil
}

// Browse is the public, cached read of approved listings of one kind.
func (c *ListingController) Browse(ctx context.Context, ownerID uuid.UUID, kind string) ([]*Listing, error) {
	listingKind := ListingKind(kind)
	if !listingKind.Valid() {
		return nil, apperror.ErrInvalidResourceKind
	}

	listings, err := c.listingRepo.ListApproved(ctx, c.db, ownerID, listingKind)
	if err != nil {
		return nil, apperror.Store(err)
	}
	return nonNil(listings), nil
}

func (c *ListingController) Resort(ctx context.Context, ownerID uuid.UUID) (*ResortView, error) {
	owner, err := c.ownerRepo.GetByID(ctx, c.db, ownerID)
	if err != nil {
		return nil, err
	}

	view := resortView(owner)
	for _, kind := range ListingKinds {
		listings, err := c.listingRepo.ListApproved(ctx, c.db, ownerID, kind)
		if err != nil {
			return nil, apperror.Store(err)
		}
		view.Listings[kind] = nonNil(listings)
	}
	return view, nil
}

func (c *ListingController) UpdateResortImages(
	ctx context.Context,
	owner Principal,
	profile *ImageUpload,
	background *ImageUpload,
) (*ResortView, error) {
	if !owner.IsOwner() {
		return nil, apperror.ErrNotAuthorized
	}
	if profile == nil && background == nil {
		return nil, apperror.ErrMissingField.WithMessage("An image is required")
	}

	var profileURL, backgroundURL *string
	if profile != nil {
		uploaded, err := c.images.Upload(
			ctx,
			profile.Reader,
			services.ResortImageFolder,
			services.ResortImagePublicID(owner.ID, "profile"),
		)
		if err != nil {
			return nil, apperror.Store(err)
		}
		profileURL = &uploaded.URL
	}
	if background != nil {
		uploaded, err := c.images.Upload(
			ctx,
			background.Reader,
			services.ResortImageFolder,
			services.ResortImagePublicID(owner.ID, "background"),
		)
		if err != nil {
			return nil, apperror.Store(err)
		}
		backgroundURL = &uploaded.URL
	}

	if err := c.ownerRepo.UpdateResortImages(ctx, c.db, owner.ID, profileURL, backgroundURL); err != nil {
		return nil, apperror.Store(err)
	}
	return c.Resort(ctx, owner.ID)
}

func (c *ListingController) UpdateEntranceFee(ctx context.Context, owner Principal, fee string) (*ResortView, error) {
	if !owner.IsOwner() {
		return nil, apperror.ErrNotAuthorized
	}
	if strings.TrimSpace(fee) == "" {
		return nil, apperror.ErrMissingField.WithMessage("entranceFee is required")
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(fee))
	if err != nil {
		return nil, apperror.ErrInvalidInput.WithMessage("entranceFee must be a number")
	}
	if amount.IsNegative() {
		return nil, apperror.ErrInvalidInput.WithMessage("entranceFee cannot be negative")
	}

	if err := c.ownerRepo.UpdateEntranceFee(ctx, c.db, owner.ID, amount.Round(2)); err != nil {
		return nil, apperror.Store(err)
	}
	return c.Resort(ctx, owner.ID)
}

func (c *ListingController) owned(ctx context.Context, owner Principal, id uuid.UUID) (*Listing, error) {
	if !owner.IsOwner() {
		return nil, apperror.ErrNotAuthorized
	}

	listing, err := c.listingRepo.GetByID(ctx, c.db, id)
	if err != nil {
		return nil, err
	}
	if listing.OwnerID != owner.ID {
		return nil, apperror.ErrNotFound
	}
	return listing, nil
}

func (c *ListingController) upload(
	ctx context.Context,
	kind ListingKind,
	ownerID uuid.UUID,
	images []ImageUpload,
) ([]ListingImage, error) {
	uploaded := make([]ListingImage, 0, len(images))
	for i, image := range images {
		result, err := c.images.Upload(
			ctx,
			image.Reader,
			services.ListingImageFolder(kind),
			services.ListingImagePublicID(kind, ownerID, i+1),
		)
		if err != nil {
			c.deleteImages(ctx, imagePublicIDs(uploaded))
			return nil, apperror.Store(err)
		}
		uploaded = append(uploaded, ListingImage{Position: i, URL: result.URL, PublicID: result.PublicID})
	}
	return uploaded, nil
}

func (c *ListingController) deleteImages(ctx context.Context, publicIDs []string) {
	for _, publicID := range publicIDs {
		c.images.Delete(ctx, publicID)
	}
}

func applyInput(listing *Listing, input ListingInput) error {
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}

	price, err := decimal.NewFromString(strings.TrimSpace(input.Price))
	if err != nil {
		return apperror.ErrInvalidInput.WithMessage("price must be a number")
	}

	listing.Name = strings.TrimSpace(input.Name)
	listing.Price = price.Round(2)
	listing.Capacity = input.Capacity
	listing.Beds = input.Beds
	listing.Size = input.Size

	features := make([]string, 0, len(input.Features))
	for _, feature := range input.Features {
		if feature = utils.NormalizeText(feature); feature != "" {
			features = append(features, feature)
		}
	}
	listing.Features = datatypes.JSONSlice[string](features)

	if err := listing.Validate(); err != nil {
		return apperror.ErrInvalidInput.WithMessage(err.Error())
	}
	return nil
}

func imagePublicIDs(images []ListingImage) []string {
	ids := make([]string, 0, len(images))
	for _, image := range images {
		ids = append(ids, image.PublicID)
	}
	return ids
}

func resortView(owner *Owner) *ResortView {
	return &ResortView{
		OwnerID:         owner.ID,
		ResortName:      owner.ResortDisplayName(),
		ResortAddress:   owner.ResortAddress,
		ContactNumber:   owner.ContactNumber,
		ProfileImage:    owner.ResortProfileImage,
		BackgroundImage: owner.ResortBackgroundImage,
		EntranceFee:     owner.EntranceFee,
		Listings:        make(map[ListingKind][]*Listing, len(ListingKinds)),
	}
}

func nonNil(listings []*Listing) []*Listing {
	if listings == nil {
		return []*Listing{}
	}
	return listings
}
