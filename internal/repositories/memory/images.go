package memory

import (
	"context"
	"io"
	"sync"

	"resorthub/internal/services"
)

// ImageStore records uploads and deletes instead of calling the hosted store.
type ImageStore struct {
	mu       sync.Mutex
	Uploaded []services.UploadedImage
	Deleted  []string
	// FailUploads makes every upload return this error.
	FailUploads error
}

func (s *ImageStore) Upload(
	_ context.Context,
	file io.Reader,
	folder, publicID string,
) (services.UploadedImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailUploads != nil {
		return services.UploadedImage{}, s.FailUploads
	}
	if _, err := io.Copy(io.Discard, file); err != nil {
		return services.UploadedImage{}, err
	}

	image := services.UploadedImage{
		URL:      "https://images.test/" + folder + "/" + publicID,
		PublicID: publicID,
	}
	s.Uploaded = append(s.Uploaded, image)
	return image, nil
}

func (s *ImageStore) Delete(_ context.Context, publicID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Deleted = append(s.Deleted, publicID)
}

func (s *ImageStore) DeletedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.Deleted...)
}
