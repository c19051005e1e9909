package services

import (
	"context"
	"strings"
	"testing"

	"resorthub/config"
	"resorthub/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListingImageNaming(t *testing.T) {
	ownerID := uuid.New()

	assert.Equal(t, "resorthub/rooms", ListingImageFolder(models.ListingRoom))
	assert.Equal(t, "resorthub/activitys", ListingImageFolder(models.ListingActivity))

	publicID := ListingImagePublicID(models.ListingCottage, ownerID, 3)
	parts := strings.Split(publicID, "_")
	require.Len(t, parts, 4)
	assert.Equal(t, "cottage", parts[0])
	assert.Equal(t, ownerID.String(), parts[1])
	assert.NoError(t, uuid.Validate(parts[2]))
	assert.Equal(t, "3", parts[3])
}

func TestNewImageStore_WithoutCredentialsIsNoop(t *testing.T) {
	store, err := NewImageStore(config.Config{})
	require.NoError(t, err)

	_, err = store.Upload(context.Background(), strings.NewReader("img"), ResortImageFolder, "x")
	assert.ErrorIs(t, err, ErrImageStoreDisabled)

	assert.NotPanics(t, func() { store.Delete(context.Background(), "x") })
}

func TestNewImageStore_WithCredentials(t *testing.T) {
	store, err := NewImageStore(config.Config{
		CloudinaryCloudName: "demo",
		CloudinaryAPIKey:    "key",
		CloudinaryAPISecret: "secret",
	})

	require.NoError(t, err)
	assert.IsType(t, &cloudinaryImageStore{}, store)
}
