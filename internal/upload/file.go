package upload

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ReadFile reads a multipart file part into memory. Files larger than
// maxSize bytes fail with ErrFileTooLarge.
func ReadFile(header *multipart.FileHeader, maxSize int64) (*File, error) {
	if header.Size > maxSize {
		return nil, ErrFileTooLarge
	}

	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	if int64(len(data)) > maxSize {
		return nil, ErrFileTooLarge
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrInvalidFile)
	}

	return &File{
		Name:        header.Filename,
		ContentType: detectContentType(header.Header.Get("Content-Type"), data),
		Data:        data,
	}, nil
}

// ValidateImage accepts image and video content types.
func ValidateImage(f *File) error {
	if isMedia(f.ContentType) {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedType, f.ContentType)
}

// ValidateReceipt accepts images and PDFs whose page count can be read.
func ValidateReceipt(f *File) error {
	if strings.HasPrefix(f.ContentType, "image/") {
		return nil
	}
	if f.ContentType != "application/pdf" {
		return fmt.Errorf("%w: %s", ErrUnsupportedType, f.ContentType)
	}

	count, err := api.PageCount(bytes.NewReader(f.Data), model.NewDefaultConfiguration())
	if err != nil {
		return fmt.Errorf("%w: unreadable pdf: %v", ErrInvalidFile, err)
	}
	if count < 1 {
		return fmt.Errorf("%w: pdf has no pages", ErrInvalidFile)
	}
	return nil
}

func isMedia(contentType string) bool {
	return strings.HasPrefix(contentType, "image/") || strings.HasPrefix(contentType, "video/")
}

func detectContentType(header string, data []byte) string {
	if header != "" && header != "application/octet-stream" {
		if i := strings.IndexByte(header, ';'); i >= 0 {
			header = header[:i]
		}
		return strings.TrimSpace(strings.ToLower(header))
	}
	return http.DetectContentType(data)
}
