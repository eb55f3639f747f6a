package catalog

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ImageStorage stores product images and hands out their public URLs
type ImageStorage interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}

// ProductImagePrefix is the object key prefix of product images
const ProductImagePrefix = "products/"

var (
	ErrImageStorageDisabled = shared.NewDomainError("STORAGE_DISABLED", "Image uploads are not configured")
	ErrUnsupportedImageType = shared.NewDomainError("INVALID_IMAGE", "Images only: jpg, jpeg, png or webp")
	ErrEmptyImage           = shared.NewDomainError("INVALID_IMAGE", "Image file is empty")
)

var imageContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// UploadImageInput is a single image file from a multipart form
type UploadImageInput struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadImage stores a product image under a generated key and returns its URL.
// Both the extension and the declared content type must be an accepted image type.
func (s *ProductService) UploadImage(ctx context.Context, input UploadImageInput) (*UploadImageResponse, error) {
	if s.images == nil {
		return nil, ErrImageStorageDisabled
	}
	if input.Size <= 0 {
		return nil, ErrEmptyImage
	}

	ext := strings.ToLower(path.Ext(input.Filename))
	contentType, ok := imageContentTypes[ext]
	if !ok {
		return nil, ErrUnsupportedImageType
	}
	if declared := strings.ToLower(strings.TrimSpace(input.ContentType)); declared != "" && !strings.HasPrefix(declared, "image/") {
		return nil, ErrUnsupportedImageType
	}

	key := ProductImagePrefix + uuid.New().String() + ext
	if err := s.images.Upload(ctx, key, input.Body, input.Size, contentType); err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	url := s.images.PublicURL(key)
	logger.FromContext(ctx).Info("Product image uploaded",
		zap.String("key", key),
		zap.Int64("size", input.Size))
	return &UploadImageResponse{Image: url}, nil
}

// ImageUploadsEnabled reports whether an image store is configured
func (s *ProductService) ImageUploadsEnabled() bool {
	return s.images != nil
}
