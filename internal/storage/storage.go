package storage

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
)

// MaxImageBytes caps uploaded product, gift box and banner images.
const MaxImageBytes = 5 << 20

var (
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrTooLarge        = errors.New("image exceeds 5 MB")
)

type PutInput struct {
	Folder      string // "products", "gift-boxes", "banners"
	Filename    string
	ContentType string
	Size        int64
}

type PutResult struct {
	Key string
	URL string
}

type Storage interface {
	Put(ctx context.Context, r io.Reader, in PutInput) (PutResult, error)
	Delete(ctx context.Context, key string) error
}

// ValidateImage checks the upload's extension and declared size and returns
// the normalized extension.
func ValidateImage(filename string, size int64) (string, error) {
	ext := imageExt(filename)
	if ext == "" {
		return "", ErrUnsupportedType
	}
	if size > MaxImageBytes {
		return "", ErrTooLarge
	}
	return ext, nil
}

func imageExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".webp", ".gif":
		return ext
	default:
		return ""
	}
}

func contentTypeFor(ext string) string {
	switch ext {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	}
	return "application/octet-stream"
}

func cleanFolder(folder string) string {
	folder = strings.Trim(filepath.ToSlash(filepath.Clean("/"+folder)), "/")
	if folder == "." {
		return ""
	}
	return folder
}

// limitReader fails once more than MaxImageBytes has been read, so a
// misreported Size cannot be used to store a larger object.
type limitReader struct {
	r io.Reader
	n int64
}

func (l *limitReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	l.n += int64(n)
	if l.n > MaxImageBytes {
		return n, ErrTooLarge
	}
	return n, err
}
