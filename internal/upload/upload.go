// Package upload pairs uploaded files with object store paths and returns
// their retrieval URLs.
package upload

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/JaimeStill/logomagic/pkg/storage"
)

// Object store categories.
const (
	CategoryLogos        = "logos"
	CategoryTargetImages = "target-images"
	CategoryReceipts     = "paypal-receipts"
)

var categories = map[string]bool{
	CategoryLogos:        true,
	CategoryTargetImages: true,
	CategoryReceipts:     true,
}

// File is an uploaded file held in memory until it is written to the store.
type File struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"-"`
}

// Size returns the file length in bytes.
func (f *File) Size() int64 {
	return int64(len(f.Data))
}

// Path returns the store key <category>/<filename>. Only the final element
// of filename is kept, so a repeated name overwrites the earlier object.
func Path(category, filename string) (string, error) {
	if !categories[category] {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}

	name := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	if name == "." || name == "/" || name == ".." || strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("%w: empty filename", ErrInvalidFile)
	}

	return category + "/" + name, nil
}

// Adapter writes files to the object store.
type Adapter struct {
	store  storage.System
	logger *slog.Logger
}

func New(store storage.System, logger *slog.Logger) *Adapter {
	return &Adapter{
		store:  store,
		logger: logger.With("system", "upload"),
	}
}

// Upload stores file under key and returns the store's URL for it.
// Failures are returned as *UploadError and are not retried.
func (a *Adapter) Upload(ctx context.Context, file *File, key string) (string, error) {
	if file == nil || len(file.Data) == 0 {
		return "", &UploadError{Path: key, Err: ErrInvalidFile}
	}

	if err := a.store.StoreWithType(ctx, key, file.Data, file.ContentType); err != nil {
		return "", &UploadError{Path: key, Err: err}
	}

	url, err := a.store.URL(ctx, key)
	if err != nil {
		return "", &UploadError{Path: key, Err: err}
	}

	a.logger.Info("file uploaded", "key", key, "size", file.Size(), "content_type", file.ContentType)
	return url, nil
}
