package storage

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/1auto-market/vehiclestore-backend/config"
	"github.com/1auto-market/vehiclestore-backend/internal/core/domain"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinary(cfg config.CloudinaryConfig, folder string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, err
	}
	return &Cloudinary{cld: cld, folder: folder}, nil
}

// Upload streams the file to Cloudinary and returns the secure URL.
func (c *Cloudinary) Upload(ctx context.Context, file io.Reader, name, _ string) (string, error) {
	uniqueFilename := true
	publicID := strings.TrimSuffix(name, path.Ext(name))
	result, err := c.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID:       publicID,
		Folder:         c.folder,
		UniqueFilename: &uniqueFilename,
	})
	if err != nil {
		return "", &domain.UpstreamError{Service: "cloudinary", Err: err}
	}
	if result.Error.Message != "" {
		return "", &domain.UpstreamError{Service: "cloudinary", Err: errString(result.Error.Message)}
	}
	return result.SecureURL, nil
}

type errString string

func (e errString) Error() string { return string(e) }
