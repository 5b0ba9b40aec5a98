package storage

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const MaxUploadSize = 10 << 20

var ErrUnsupportedType = errors.New("unsupported file type, please upload JPG, PNG, WEBP or GIF")

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// SniffImage reads the magic number of an uploaded file, rewinds it and
// returns the detected content type and a collision free file name.
func SniffImage(file io.ReadSeeker, originalName string) (contentType, safeName string, err error) {
	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", "", fmt.Errorf("read file header: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", "", fmt.Errorf("rewind file: %w", err)
	}

	contentType = http.DetectContentType(buffer[:n])
	fallback, ok := imageExtensions[contentType]
	if !ok {
		return "", "", ErrUnsupportedType
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	if ext == "" || len(ext) > 5 {
		ext = fallback
	}
	return contentType, uuid.New().String() + ext, nil
}
