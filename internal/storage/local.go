package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

type Local struct {
	BaseDir   string
	URLPrefix string
}

func NewLocal(baseDir, urlPrefix string) *Local {
	return &Local{BaseDir: baseDir, URLPrefix: urlPrefix}
}

func (l *Local) Put(ctx context.Context, r io.Reader, in PutInput) (PutResult, error) {
	_ = ctx

	ext, err := ValidateImage(in.Filename, in.Size)
	if err != nil {
		return PutResult{}, err
	}

	folder := cleanFolder(in.Folder)
	dir := filepath.Join(l.BaseDir, filepath.FromSlash(folder))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return PutResult{}, err
	}

	key := path.Join(folder, uuid.NewString()+ext)
	dstPath := filepath.Join(l.BaseDir, filepath.FromSlash(key))

	f, err := os.OpenFile(dstPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return PutResult{}, err
	}
	defer f.Close()

	if _, err := io.Copy(f, &limitReader{r: r}); err != nil {
		_ = os.Remove(dstPath)
		return PutResult{}, err
	}

	url := strings.TrimRight(l.URLPrefix, "/") + "/" + key
	return PutResult{Key: key, URL: url}, nil
}

func (l *Local) Delete(ctx context.Context, key string) error {
	_ = ctx
	if key == "" {
		return nil
	}
	clean := cleanFolder(key)
	err := os.Remove(filepath.Join(l.BaseDir, filepath.FromSlash(clean)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (l *Local) String() string { return fmt.Sprintf("local(%s)", l.BaseDir) }
