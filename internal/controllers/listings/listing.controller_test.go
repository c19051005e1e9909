package listingController

import (
	"context"
	"errors"
	"strings"
	"testing"

	"resorthub/internal/apperror"
	"resorthub/internal/logger"
	. "resorthub/internal/models"
	"resorthub/internal/repositories"
	"resorthub/internal/repositories/memory"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listingFixture struct {
	store  *memory.Store
	repos  repositories.Repository
	images *memory.ImageStore
	ctrl   *ListingController
	owner  Principal
}

func newListingFixture(t *testing.T) *listingFixture {
	t.Helper()

	store := memory.NewStore()
	repos := store.Repository()
	images := &memory.ImageStore{}

	owner := &Owner{Username: "sunny", ResortName: "Sunny Resort"}
	require.NoError(t, repos.Owner.Create(context.Background(), nil, owner))

	return &listingFixture{
		store:  store,
		repos:  repos,
		images: images,
		ctrl: &ListingController{
			listingRepo: repos.Listing,
			ownerRepo:   repos.Owner,
			images:      images,
			transaction: &memory.Transactor{},
			log:         logger.New("listingController"),
		},
		owner: owner.Principal(),
	}
}

func uploads(n int) []ImageUpload {
	out := make([]ImageUpload, n)
	for i := range out {
		out[i] = ImageUpload{Filename: "photo.jpg", Reader: strings.NewReader("jpeg")}
	}
	return out
}

func roomInput() ListingInput {
	return ListingInput{
		Kind:     "room",
		Name:     " Deluxe Room ",
		Price:    "2500.50",
		Capacity: 4,
		Features: []string{"Aircon", "  ", "Sea view"},
	}
}

func TestCreate_StoresPendingListing(t *testing.T) {
	f := newListingFixture(t)

	listing, err := f.ctrl.Create(context.Background(), f.owner, roomInput(), uploads(2))
	require.NoError(t, err)

	assert.Equal(t, ListingPending, listing.Status)
	assert.Equal(t, "Deluxe Room", listing.Name)
	assert.True(t, decimal.RequireFromString("2500.50").Equal(listing.Price))
	assert.Equal(t, []string{"Aircon", "Sea view"}, []string(listing.Features))
	require.Len(t, listing.Images, 2)
	assert.Equal(t, 0, listing.Images[0].Position)
	assert.True(t, strings.HasPrefix(listing.Images[0].URL, "https://images.test/resorthub/rooms/room_"))

	stored, ok := f.store.Listing(listing.ID)
	require.True(t, ok)
	assert.Equal(t, f.owner.ID, stored.OwnerID)
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name    string
		actor   func(f *listingFixture) Principal
		input   func() ListingInput
		images  int
		wantErr *apperror.Error
	}{
		{
			name:    "customer cannot create",
			actor:   func(f *listingFixture) Principal { return NewPrincipal(PrincipalCustomer, f.owner.ID) },
			input:   roomInput,
			wantErr: apperror.ErrNotAuthorized,
		},
		{
			name:    "missing kind",
			input:   func() ListingInput { in := roomInput(); in.Kind = ""; return in },
			wantErr: apperror.ErrMissingField,
		},
		{
			name:    "unknown kind",
			input:   func() ListingInput { in := roomInput(); in.Kind = "villa"; return in },
			wantErr: apperror.ErrInvalidInput,
		},
		{
			name:    "missing name",
			input:   func() ListingInput { in := roomInput(); in.Name = ""; return in },
			wantErr: apperror.ErrMissingField,
		},
		{
			name:    "price not a number",
			input:   func() ListingInput { in := roomInput(); in.Price = "cheap"; return in },
			wantErr: apperror.ErrInvalidInput,
		},
		{
			name:    "negative price",
			input:   func() ListingInput { in := roomInput(); in.Price = "-1"; return in },
			wantErr: apperror.ErrInvalidInput,
		},
		{
			name:    "too many images",
			input:   roomInput,
			images:  MaxListingImages + 1,
			wantErr: apperror.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newListingFixture(t)
			actor := f.owner
			if tt.actor != nil {
				actor = tt.actor(f)
			}

			_, err := f.ctrl.Create(context.Background(), actor, tt.input(), uploads(tt.images))
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.images.Uploaded)
		})
	}
}

func TestCreate_UploadFailure(t *testing.T) {
	f := newListingFixture(t)
	f.images.FailUploads = errors.New("quota exceeded")

	_, err := f.ctrl.Create(context.Background(), f.owner, roomInput(), uploads(1))
	assert.ErrorIs(t, err, apperror.ErrStore)

	listings, err := f.ctrl.OwnerListings(context.Background(), f.owner)
	require.NoError(t, err)
	assert.Empty(t, listings)
}

func TestUpdate_ResetsToPendingAndReplacesImages(t *testing.T) {
	f := newListingFixture(t)
	ctx := context.Background()

	listing, err := f.ctrl.Create(ctx, f.owner, roomInput(), uploads(2))
	require.NoError(t, err)
	oldIDs := listing.PublicIDs()
	require.NoError(t, f.repos.Listing.SetStatus(ctx, nil, listing.ID, ListingApproved))

	input := roomInput()
	input.Kind = ""
	input.Name = "Family Room"
	input.Price = "3000"

	updated, err := f.ctrl.Update(ctx, f.owner, listing.ID, input, uploads(1))
	require.NoError(t, err)

	assert.Equal(t, "Family Room", updated.Name)
	assert.Equal(t, ListingPending, updated.Status)
	require.Len(t, updated.Images, 1)
	assert.ElementsMatch(t, oldIDs, f.images.DeletedIDs())
	assert.Equal(t, 1, f.store.ClearedCaches[f.owner.ID])
}

func TestUpdate_KeepsImagesWhenNoneUploaded(t *testing.T) {
	f := newListingFixture(t)
	ctx := context.Background()

	listing, err := f.ctrl.Create(ctx, f.owner, roomInput(), uploads(3))
	require.NoError(t, err)

	updated, err := f.ctrl.Update(ctx, f.owner, listing.ID, roomInput(), nil)
	require.NoError(t, err)
	assert.Len(t, updated.Images, 3)
	assert.Empty(t, f.images.DeletedIDs())
}

func TestUpdate_Rejects(t *testing.T) {
	f := newListingFixture(t)
	ctx := context.Background()

	listing, err := f.ctrl.Create(ctx, f.owner, roomInput(), nil)
	require.NoError(t, err)

	other := NewPrincipal(PrincipalOwner, uuid.New())
	_, err = f.ctrl.Update(ctx, other, listing.ID, roomInput(), nil)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = f.ctrl.Update(ctx, f.owner, uuid.New(), roomInput(), nil)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	input := roomInput()
	input.Kind = "cottage"
	_, err = f.ctrl.Update(ctx, f.owner, listing.ID, input, nil)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestDelete_RemovesImagesAndClearsCache(t *testing.T) {
	f := newListingFixture(t)
	ctx := context.Background()

	listing, err := f.ctrl.Create(ctx, f.owner, roomInput(), uploads(2))
	require.NoError(t, err)

	err = f.ctrl.Delete(ctx, NewPrincipal(PrincipalOwner, uuid.New()), listing.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	require.NoError(t, f.ctrl.Delete(ctx, f.owner, listing.ID))
	_, ok := f.store.Listing(listing.ID)
	assert.False(t, ok)
	assert.ElementsMatch(t, listing.PublicIDs(), f.images.DeletedIDs())
	assert.Equal(t, 1, f.store.ClearedCaches[f.owner.ID])
}

func TestBrowseAndResort_OnlyApproved(t *testing.T) {
	f := newListingFixture(t)
	ctx := context.Background()

	pending, err := f.ctrl.Create(ctx, f.owner, roomInput(), nil)
	require.NoError(t, err)
	approved, err := f.ctrl.Create(ctx, f.owner, roomInput(), nil)
	require.NoError(t, err)
	require.NoError(t, f.repos.Listing.SetStatus(ctx, nil, approved.ID, ListingApproved))

	rooms, err := f.ctrl.Browse(ctx, f.owner.ID, "room")
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, approved.ID, rooms[0].ID)

	food, err := f.ctrl.Browse(ctx, f.owner.ID, "food")
	require.NoError(t, err)
	assert.NotNil(t, food)
	assert.Empty(t, food)

	_, err = f.ctrl.Browse(ctx, f.owner.ID, "villa")
	assert.ErrorIs(t, err, apperror.ErrInvalidResourceKind)

	resort, err := f.ctrl.Resort(ctx, f.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sunny Resort", resort.ResortName)
	assert.Len(t, resort.Listings, len(ListingKinds))
	require.Len(t, resort.Listings[ListingRoom], 1)
	assert.NotEqual(t, pending.ID, resort.Listings[ListingRoom][0].ID)

	_, err = f.ctrl.Resort(ctx, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUpdateResortImages(t *testing.T) {
	f := newListingFixture(t)
	ctx := context.Background()

	_, err := f.ctrl.UpdateResortImages(ctx, f.owner, nil, nil)
	assert.ErrorIs(t, err, apperror.ErrMissingField)

	profile := ImageUpload{Filename: "logo.png", Reader: strings.NewReader("png")}
	view, err := f.ctrl.UpdateResortImages(ctx, f.owner, &profile, nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(view.ProfileImage, "https://images.test/resorthub/resorts/resort_profile_"))
	assert.Empty(t, view.BackgroundImage)

	background := ImageUpload{Filename: "beach.png", Reader: strings.NewReader("png")}
	view, err = f.ctrl.UpdateResortImages(ctx, f.owner, nil, &background)
	require.NoError(t, err)
	assert.NotEmpty(t, view.ProfileImage)
	assert.NotEmpty(t, view.BackgroundImage)
}

func TestUpdateEntranceFee(t *testing.T) {
	tests := []struct {
		name    string
		fee     string
		want    string
		wantErr *apperror.Error
	}{
		{name: "whole amount", fee: "150", want: "150"},
		{name: "rounded to cents", fee: " 99.999 ", want: "100"},
		{name: "free entry", fee: "0", want: "0"},
		{name: "blank", fee: "  ", wantErr: apperror.ErrMissingField},
		{name: "not a number", fee: "abc", wantErr: apperror.ErrInvalidInput},
		{name: "negative", fee: "-5", wantErr: apperror.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newListingFixture(t)

			view, err := f.ctrl.UpdateEntranceFee(context.Background(), f.owner, tt.fee)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, view.EntranceFee)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(*view.EntranceFee))
		})
	}
}
