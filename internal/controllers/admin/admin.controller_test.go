package adminController

import (
	"context"
	"testing"
	"time"

	"resorthub/internal/apperror"
	"resorthub/internal/logger"
	. "resorthub/internal/models"
	"resorthub/internal/repositories"
	"resorthub/internal/repositories/memory"
	"resorthub/internal/services"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

type adminFixture struct {
	store       *memory.Store
	repos       repositories.Repository
	images      *memory.ImageStore
	publisher   *memory.Publisher
	transaction *memory.Transactor
	ctrl        *AdminController
	admin       Principal
	customer    *Customer
	owner       *Owner
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()

	store := memory.NewStore()
	repos := store.Repository()
	images := &memory.ImageStore{}
	publisher := &memory.Publisher{}
	transaction := &memory.Transactor{}
	ctx := context.Background()

	admin := &Admin{Username: "admin"}
	require.NoError(t, repos.Admin.Create(ctx, nil, admin))
	customer := &Customer{Username: "jane", Name: "Jane"}
	require.NoError(t, repos.Customer.Create(ctx, nil, customer))
	owner := &Owner{Username: "sunny", ResortName: "Sunny Resort"}
	require.NoError(t, repos.Owner.Create(ctx, nil, owner))

	return &adminFixture{
		store:       store,
		repos:       repos,
		images:      images,
		publisher:   publisher,
		transaction: transaction,
		ctrl: &AdminController{
			listingRepo:      repos.Listing,
			customerRepo:     repos.Customer,
			ownerRepo:        repos.Owner,
			conversationRepo: repos.Conversation,
			messageRepo:      repos.Message,
			reservationRepo:  repos.Reservation,
			notificationRepo: repos.Notification,
			images:           images,
			notifier:         services.NewNotificationService(repos.Notification, publisher, nil),
			transaction:      transaction,
			log:              logger.New("adminController"),
		},
		admin:    admin.Principal(),
		customer: customer,
		owner:    owner,
	}
}

func (f *adminFixture) listing(t *testing.T, status ListingStatus) *Listing {
	t.Helper()
	listing := &Listing{
		OwnerID: f.owner.ID,
		Kind:    ListingCottage,
		Name:    "Nipa Hut",
		Price:   decimal.NewFromInt(800),
		Status:  status,
		Images: []ListingImage{
			{Position: 0, URL: "https://images.test/a.jpg", PublicID: "cottage_a"},
			{Position: 1, URL: "https://images.test/b.jpg", PublicID: "cottage_b"},
		},
	}
	require.NoError(t, f.repos.Listing.Create(context.Background(), nil, listing))
	return listing
}

func TestAdminOperations_RequireAdmin(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()
	owner := f.owner.Principal()

	_, err := f.ctrl.PendingListings(ctx, owner)
	assert.ErrorIs(t, err, apperror.ErrNotAuthorized)
	_, err = f.ctrl.ApproveListing(ctx, owner, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotAuthorized)
	assert.ErrorIs(t, f.ctrl.DisapproveListing(ctx, owner, uuid.New()), apperror.ErrNotAuthorized)
	_, err = f.ctrl.Customers(ctx, f.customer.Principal())
	assert.ErrorIs(t, err, apperror.ErrNotAuthorized)
	_, err = f.ctrl.Owners(ctx, owner)
	assert.ErrorIs(t, err, apperror.ErrNotAuthorized)
	assert.ErrorIs(t, f.ctrl.DeleteCustomer(ctx, owner, f.customer.ID), apperror.ErrNotAuthorized)
	assert.ErrorIs(t, f.ctrl.DeleteOwner(ctx, owner, f.owner.ID), apperror.ErrNotAuthorized)
}

func TestPendingListings(t *testing.T) {
	f := newAdminFixture(t)

	pending := f.listing(t, ListingPending)
	f.listing(t, ListingApproved)

	queue, err := f.ctrl.PendingListings(context.Background(), f.admin)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, pending.ID, queue[0].ID)
	assert.Equal(t, "Sunny Resort", queue[0].ResortName)
}

func TestApproveListing(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()
	listing := f.listing(t, ListingPending)

	approved, err := f.ctrl.ApproveListing(ctx, f.admin, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, ListingApproved, approved.Status)

	stored, ok := f.store.Listing(listing.ID)
	require.True(t, ok)
	assert.Equal(t, ListingApproved, stored.Status)
	assert.Equal(t, 1, f.store.ClearedCaches[f.owner.ID])

	notifications := f.store.Notifications()
	require.Len(t, notifications, 1)
	assert.Equal(t, NotificationOfferApproved, notifications[0].Kind)
	assert.True(t, notifications[0].VisibleTo(f.owner.Principal()))

	_, err = f.ctrl.ApproveListing(ctx, f.admin, listing.ID)
	require.NoError(t, err)
	assert.Len(t, f.store.Notifications(), 1)

	_, err = f.ctrl.ApproveListing(ctx, f.admin, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestApproveListing_NotificationFailureKeepsApproval(t *testing.T) {
	f := newAdminFixture(t)
	listing := f.listing(t, ListingPending)
	f.store.FailNotifications = true

	approved, err := f.ctrl.ApproveListing(context.Background(), f.admin, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, ListingApproved, approved.Status)
}

func TestDisapproveListing_DeletesRowAndImages(t *testing.T) {
	f := newAdminFixture(t)
	listing := f.listing(t, ListingPending)

	require.NoError(t, f.ctrl.DisapproveListing(context.Background(), f.admin, listing.ID))

	_, ok := f.store.Listing(listing.ID)
	assert.False(t, ok)
	assert.ElementsMatch(t, []string{"cottage_a", "cottage_b"}, f.images.DeletedIDs())
	assert.Equal(t, 1, f.store.ClearedCaches[f.owner.ID])

	err := f.ctrl.DisapproveListing(context.Background(), f.admin, listing.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func seedActivity(t *testing.T, f *adminFixture, listing *Listing) {
	t.Helper()
	ctx := context.Background()

	conversation, err := f.repos.Conversation.GetOrCreate(ctx, nil, f.customer.ID, f.owner.ID)
	require.NoError(t, err)
	require.NoError(t, f.repos.Message.Create(ctx, nil, &Message{
		ConversationID: &conversation.ID,
		SenderKind:     PrincipalCustomer,
		SenderID:       f.customer.ID,
		Text:           "Hello",
	}))

	support, err := f.repos.Conversation.GetOrCreateAdmin(ctx, nil, f.admin.ID, f.owner.Principal())
	require.NoError(t, err)
	require.NoError(t, f.repos.Message.Create(ctx, nil, &Message{
		AdminConversationID: &support.ID,
		SenderKind:          PrincipalOwner,
		SenderID:            f.owner.ID,
		Text:                "Help",
	}))

	checkIn := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	reservation := &Reservation{
		CustomerID:   f.customer.ID,
		OwnerID:      f.owner.ID,
		ResourceKind: listing.Kind,
		ResourceID:   listing.ID,
		CheckIn:      datatypes.Date(checkIn),
		CheckOut:     datatypes.Date(checkIn.AddDate(0, 0, 2)),
		Guests:       2,
		Status:       ReservationPending,
	}
	require.NoError(t, f.repos.Reservation.Create(ctx, nil, reservation))
	require.NoError(t, f.repos.Notification.Create(ctx, nil, NewCustomerSignupNotification(f.customer)))
	require.NoError(t, f.repos.Notification.Create(ctx, nil, NewOwnerSignupNotification(f.owner)))
}

func TestDeleteCustomer_Cascades(t *testing.T) {
	f := newAdminFixture(t)
	listing := f.listing(t, ListingApproved)
	seedActivity(t, f, listing)

	require.NoError(t, f.ctrl.DeleteCustomer(context.Background(), f.admin, f.customer.ID))
	assert.Equal(t, 1, f.transaction.Calls)

	_, err := f.repos.Customer.GetByID(context.Background(), nil, f.customer.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Empty(t, f.store.Reservations())

	messages := f.store.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, "Help", messages[0].Text)

	notifications := f.store.Notifications()
	require.Len(t, notifications, 1)
	assert.Equal(t, NotificationNewOwner, notifications[0].Kind)

	_, ok := f.store.Listing(listing.ID)
	assert.True(t, ok)
	assert.Empty(t, f.images.DeletedIDs())
}

func TestDeleteOwner_CascadesListingsAndImages(t *testing.T) {
	f := newAdminFixture(t)
	listing := f.listing(t, ListingApproved)
	seedActivity(t, f, listing)

	require.NoError(t, f.ctrl.DeleteOwner(context.Background(), f.admin, f.owner.ID))

	_, err := f.repos.Owner.GetByID(context.Background(), nil, f.owner.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	_, ok := f.store.Listing(listing.ID)
	assert.False(t, ok)
	assert.ElementsMatch(t, []string{"cottage_a", "cottage_b"}, f.images.DeletedIDs())
	assert.Empty(t, f.store.Messages())
	assert.Empty(t, f.store.Reservations())

	notifications := f.store.Notifications()
	require.Len(t, notifications, 1)
	assert.Equal(t, NotificationNewUser, notifications[0].Kind)

	customers, err := f.ctrl.Customers(context.Background(), f.admin)
	require.NoError(t, err)
	assert.Len(t, customers, 1)
}

func TestDeleteAccount_NotFound(t *testing.T) {
	f := newAdminFixture(t)

	assert.ErrorIs(t, f.ctrl.DeleteCustomer(context.Background(), f.admin, uuid.New()), apperror.ErrNotFound)
	assert.ErrorIs(t, f.ctrl.DeleteOwner(context.Background(), f.admin, uuid.New()), apperror.ErrNotFound)
	assert.Zero(t, f.transaction.Calls)
}
