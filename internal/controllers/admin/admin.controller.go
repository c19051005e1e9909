package adminController

import (
	"context"
	"time"

	"resorthub/internal/apperror"
	"resorthub/internal/database"
	"resorthub/internal/logger"
	. "resorthub/internal/models"
	"resorthub/internal/repositories"
	"resorthub/internal/services"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AdminControllerInterface interface {
	PendingListings(ctx context.Context, admin Principal) ([]PendingListing, error)
	ApproveListing(ctx context.Context, admin Principal, id uuid.UUID) (*Listing, error)
	DisapproveListing(ctx context.Context, admin Principal, id uuid.UUID) error
	Customers(ctx context.Context, admin Principal) ([]*Customer, error)
	Owners(ctx context.Context, admin Principal) ([]*Owner, error)
	DeleteCustomer(ctx context.Context, admin Principal, id uuid.UUID) error
	DeleteOwner(ctx context.Context, admin Principal, id uuid.UUID) error
}

type PendingListing struct {
	*Listing
	ResortName string    `json:"resortName"`
	Submitted  time.Time `json:"submitted"`
}

type AdminController struct {
	listingRepo      repositories.ListingRepository
	customerRepo     repositories.CustomerRepository
	ownerRepo        repositories.OwnerRepository
	conversationRepo repositories.ConversationRepository
	messageRepo      repositories.MessageRepository
	reservationRepo  repositories.ReservationRepository
	notificationRepo repositories.NotificationRepository
	images           services.ImageStore
	notifier         services.Notifier
	transaction      services.Transactor
	db               *gorm.DB
	log              logger.Logger
}

func New(
	repos repositories.Repository,
	services services.Service,
	db database.DB,
) AdminControllerInterface {
	return &AdminController{
		listingRepo:      repos.Listing,
		customerRepo:     repos.Customer,
		ownerRepo:        repos.Owner,
		conversationRepo: repos.Conversation,
		messageRepo:      repos.Message,
		reservationRepo:  repos.Reservation,
		notificationRepo: repos.Notification,
		images:           services.Images,
		notifier:         services.Notification,
		transaction:      services.Transaction,
		db:               db.SQL,
		log:              logger.New("adminController"),
	}
}

func (c *AdminController) PendingListings(ctx context.Context, admin Principal) ([]PendingListing, error) {
	if !admin.IsAdmin() {
		return nil, apperror.ErrNotAuthorized
	}

	status := ListingPending
	listings, err := c.listingRepo.List(ctx, c.db, repositories.ListingFilter{Status: &status})
	if err != nil {
		return nil, apperror.Store(err)
	}

	resorts := make(map[uuid.UUID]string)
	out := make([]PendingListing, 0, len(listings))
	for _, listing := range listings {
		name, ok := resorts[listing.OwnerID]
		if !ok {
			name = "Resort"
			if owner, err := c.ownerRepo.GetByID(ctx, c.db, listing.OwnerID); err == nil {
				name = owner.ResortDisplayName()
			}
			resorts[listing.OwnerID] = name
		}
		out = append(out, PendingListing{Listing: listing, ResortName: name, Submitted: listing.CreatedAt})
	}
	return out, nil
}

// ApproveListing publishes the listing and tells its owner. Approving an
// approved listing is a no-op.
func (c *AdminController) ApproveListing(ctx context.Context, admin Principal, id uuid.UUID) (*Listing, error) {
	log := c.log.TraceFromContext(ctx).Function("ApproveListing")

	if !admin.IsAdmin() {
		return nil, apperror.ErrNotAuthorized
	}

	listing, err := c.listingRepo.GetByID(ctx, c.db, id)
	if err != nil {
		return nil, err
	}
	if listing.IsApproved() {
		return listing, nil
	}

	if err := c.listingRepo.SetStatus(ctx, c.db, id, ListingApproved); err != nil {
		return nil, log.Err("failed to approve listing", apperror.Store(err), "listingID", id)
	}
	listing.Status = ListingApproved
	c.listingRepo.ClearOwnerCache(ctx, listing.OwnerID)

	if err := c.notifier.Emit(ctx, c.db, NewOfferApprovedNotification(listing)); err != nil {
		log.Warn("listing approved without notification", "listingID", id, "error", err)
	}

	log.Info("listing approved", "listingID", id, "ownerID", listing.OwnerID)
	return listing, nil
}

// DisapproveListing removes the listing outright. Rejection is not a stored state.
func (c *AdminController) DisapproveListing(ctx context.Context, admin Principal, id uuid.UUID) error {
	log := c.log.TraceFromContext(ctx).Function("DisapproveListing")

	if !admin.IsAdmin() {
		return apperror.ErrNotAuthorized
	}

	listing, err := c.listingRepo.GetByID(ctx, c.db, id)
	if err != nil {
		return err
	}

	for _, publicID := range listing.PublicIDs() {
		c.images.Delete(ctx, publicID)
	}
	if err := c.listingRepo.Delete(ctx, c.db, id); err != nil {
		return log.Err("failed to delete disapproved listing", apperror.Store(err), "listingID", id)
	}
	c.listingRepo.ClearOwnerCache(ctx, listing.OwnerID)

	log.Info("listing disapproved", "listingID", id, "ownerID", listing.OwnerID)
	return nil
}

func (c *AdminController) Customers(ctx context.Context, admin Principal) ([]*Customer, error) {
	if !admin.IsAdmin() {
		return nil, apperror.ErrNotAuthorized
	}

	customers, err := c.customerRepo.List(ctx, c.db)
	if err != nil {
		return nil, apperror.Store(err)
	}
	if customers == nil {
		customers = []*Customer{}
	}
	return customers, nil
}

func (c *AdminController) Owners(ctx context.Context, admin Principal) ([]*Owner, error) {
	if !admin.IsAdmin() {
		return nil, apperror.ErrNotAuthorized
	}

	owners, err := c.ownerRepo.List(ctx, c.db)
	if err != nil {
		return nil, apperror.Store(err)
	}
	if owners == nil {
		owners = []*Owner{}
	}
	return owners, nil
}

func (c *AdminController) DeleteCustomer(ctx context.Context, admin Principal, id uuid.UUID) error {
	if !admin.IsAdmin() {
		return apperror.ErrNotAuthorized
	}
	if _, err := c.customerRepo.GetByID(ctx, c.db, id); err != nil {
		return err
	}

	party := NewPrincipal(PrincipalCustomer, id)
	return c.deleteParty(ctx, party, func(ctx context.Context, tx *gorm.DB) error {
		return c.customerRepo.Delete(ctx, tx, id)
	})
}

func (c *AdminController) DeleteOwner(ctx context.Context, admin Principal, id uuid.UUID) error {
	if !admin.IsAdmin() {
		return apperror.ErrNotAuthorized
	}
	if _, err := c.ownerRepo.GetByID(ctx, c.db, id); err != nil {
		return err
	}

	var publicIDs []string
	party := NewPrincipal(PrincipalOwner, id)
	err := c.deleteParty(ctx, party, func(ctx context.Context, tx *gorm.DB) error {
		ids, err := c.listingRepo.DeleteByOwner(ctx, tx, id)
		if err != nil {
			return err
		}
		publicIDs = ids
		return c.ownerRepo.Delete(ctx, tx, id)
	})
	if err != nil {
		return err
	}

	for _, publicID := range publicIDs {
		c.images.Delete(ctx, publicID)
	}
	c.listingRepo.ClearOwnerCache(ctx, id)
	return nil
}

// deleteParty removes everything that references party, then runs
// deleteRecord, all in one transaction.
func (c *AdminController) deleteParty(
	ctx context.Context,
	party Principal,
	deleteRecord func(ctx context.Context, tx *gorm.DB) error,
) error {
	log := c.log.TraceFromContext(ctx).Function("deleteParty")

	err := c.transaction.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		direct, admin, err := c.conversationRepo.IDsForParty(ctx, tx, party)
		if err != nil {
			return err
		}
		if err := c.messageRepo.DeleteByThreads(ctx, tx, direct, admin); err != nil {
			return err
		}
		if err := c.conversationRepo.DeleteByIDs(ctx, tx, direct, admin); err != nil {
			return err
		}
		if err := c.reservationRepo.DeleteForParty(ctx, tx, party); err != nil {
			return err
		}
		if err := c.notificationRepo.DeleteForParty(ctx, tx, party); err != nil {
			return err
		}
		return deleteRecord(ctx, tx)
	})
	if err != nil {
		return log.Err("failed to delete account", apperror.Store(err), "party", party.String())
	}

	log.Info("account deleted", "party", party.String())
	return nil
}
