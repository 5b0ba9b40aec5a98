// Package storage uploads listing media to a hosted provider.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/1auto-market/vehiclestore-backend/config"
	"github.com/1auto-market/vehiclestore-backend/internal/core/domain"
)

// MediaStorage stores a file and returns its public URL.
type MediaStorage interface {
	Upload(ctx context.Context, file io.Reader, name, contentType string) (string, error)
}

// New picks the backend named by media.provider. Missing credentials yield a
// storage that reports domain.ErrUnavailable.
func New(ctx context.Context, media config.MediaConfig, cld config.CloudinaryConfig, s3cfg config.S3Config) (MediaStorage, error) {
	switch strings.ToLower(media.Provider) {
	case "", "cloudinary":
		if cld.CloudName == "" || cld.APIKey == "" || cld.APISecret == "" {
			return Unconfigured{}, nil
		}
		return NewCloudinary(cld, media.Folder)
	case "s3":
		if s3cfg.Bucket == "" || s3cfg.Region == "" {
			return Unconfigured{}, nil
		}
		return NewS3(ctx, s3cfg, media.Folder)
	}
	return nil, fmt.Errorf("unknown media provider %q", media.Provider)
}

// Unconfigured rejects every upload.
type Unconfigured struct{}

func (Unconfigured) Upload(context.Context, io.Reader, string, string) (string, error) {
	return "", fmt.Errorf("media storage: %w", domain.ErrUnavailable)
}
