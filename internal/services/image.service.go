package services

import (
	"context"
	"fmt"
	"io"

	"resorthub/config"
	"resorthub/internal/apperror"
	"resorthub/internal/logger"
	"resorthub/internal/models"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

const (
	imageRootFolder   = "resorthub"
	ResortImageFolder = imageRootFolder + "/resorts"
)

var ErrImageStoreDisabled = apperror.New(
	apperror.KindValidation,
	"image_store_disabled",
	"Image uploads are not configured",
)

type UploadedImage struct {
	URL      string
	PublicID string
}

// ImageStore relays uploads to the hosted image service. Delete is best-effort:
// failures are logged and never returned.
type ImageStore interface {
	Upload(ctx context.Context, file io.Reader, folder, publicID string) (UploadedImage, error)
	Delete(ctx context.Context, publicID string)
}

func ListingImageFolder(kind models.ListingKind) string {
	return fmt.Sprintf("%s/%ss", imageRootFolder, kind)
}

// ListingImagePublicID builds <kind>_<owner>_<uuid>_<n> for the n-th image.
func ListingImagePublicID(kind models.ListingKind, ownerID uuid.UUID, n int) string {
	return fmt.Sprintf("%s_%s_%s_%d", kind, ownerID, uuid.NewString(), n)
}

func ResortImagePublicID(ownerID uuid.UUID, slot string) string {
	return fmt.Sprintf("resort_%s_%s_%s", slot, ownerID, uuid.NewString())
}

// NewImageStore returns the Cloudinary store when credentials are configured
// and a logging no-op store otherwise.
func NewImageStore(config config.Config) (ImageStore, error) {
	log := logger.New("imageStore").Function("NewImageStore")

	if !config.HasCloudinary() {
		log.Warn("Cloudinary credentials not configured, image uploads disabled")
		return NewNoopImageStore(), nil
	}

	cld, err := cloudinary.NewFromParams(
		config.CloudinaryCloudName,
		config.CloudinaryAPIKey,
		config.CloudinaryAPISecret,
	)
	if err != nil {
		return nil, log.Err("failed to create cloudinary client", err)
	}

	return &cloudinaryImageStore{
		cld: cld,
		log: logger.New("cloudinaryImageStore"),
	}, nil
}

type cloudinaryImageStore struct {
	cld *cloudinary.Cloudinary
	log logger.Logger
}

func (s *cloudinaryImageStore) Upload(
	ctx context.Context,
	file io.Reader,
	folder, publicID string,
) (UploadedImage, error) {
	log := s.log.TraceFromContext(ctx).Function("Upload")

	result, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID:  publicID,
		Folder:    folder,
		Overwrite: api.Bool(true),
	})
	if err != nil {
		return UploadedImage{}, log.Err("failed to upload image", apperror.Store(err), "publicID", publicID)
	}
	if result.Error.Message != "" {
		return UploadedImage{}, log.Err(
			"image store rejected upload",
			apperror.Store(fmt.Errorf("cloudinary: %s", result.Error.Message)),
			"publicID", publicID,
		)
	}

	return UploadedImage{URL: result.SecureURL, PublicID: result.PublicID}, nil
}

func (s *cloudinaryImageStore) Delete(ctx context.Context, publicID string) {
	log := s.log.TraceFromContext(ctx).Function("Delete")

	if publicID == "" {
		return
	}

	result, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		log.Er("failed to delete image", err, "publicID", publicID)
		return
	}
	if result.Error.Message != "" {
		log.Warn("image store rejected delete", "publicID", publicID, "error", result.Error.Message)
	}
}

type noopImageStore struct {
	log logger.Logger
}

func NewNoopImageStore() ImageStore {
	return &noopImageStore{log: logger.New("noopImageStore")}
}

func (s *noopImageStore) Upload(
	ctx context.Context,
	_ io.Reader,
	folder, publicID string,
) (UploadedImage, error) {
	s.log.TraceFromContext(ctx).
		Function("Upload").
		Warn("image upload skipped, store disabled", "folder", folder, "publicID", publicID)
	return UploadedImage{}, ErrImageStoreDisabled
}

func (s *noopImageStore) Delete(ctx context.Context, publicID string) {
	s.log.TraceFromContext(ctx).Function("Delete").Debug("image delete skipped", "publicID", publicID)
}
