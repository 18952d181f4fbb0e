package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/config"
)

func TestValidateImage(t *testing.T) {
	ext, err := ValidateImage("Sparkler.JPG", 1024)
	require.NoError(t, err)
	assert.Equal(t, ".jpg", ext)

	_, err = ValidateImage("notes.txt", 10)
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = ValidateImage("big.png", MaxImageBytes+1)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestLocalPutAndDelete(t *testing.T) {
	dir := t.TempDir()
	l := NewLocal(dir, "/uploads/")

	res, err := l.Put(context.Background(), strings.NewReader("png-bytes"), PutInput{
		Folder:   "products",
		Filename: "rocket.png",
		Size:     9,
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Key, "products/"))
	assert.True(t, strings.HasSuffix(res.Key, ".png"))
	assert.Equal(t, "/uploads/"+res.Key, res.URL)

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(res.Key)))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	require.NoError(t, l.Delete(context.Background(), res.Key))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(res.Key)))
	assert.True(t, os.IsNotExist(err))

	// deleting twice is not an error
	require.NoError(t, l.Delete(context.Background(), res.Key))
}

func TestLocalPutRejectsOversizedStream(t *testing.T) {
	l := NewLocal(t.TempDir(), "/uploads")
	big := bytes.Repeat([]byte{'x'}, MaxImageBytes+10)

	_, err := l.Put(context.Background(), bytes.NewReader(big), PutInput{Filename: "a.png", Size: 10})
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestLocalDeleteStaysInsideBaseDir(t *testing.T) {
	dir := t.TempDir()
	outside := filepath.Join(filepath.Dir(dir), "keep.txt")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))
	t.Cleanup(func() { _ = os.Remove(outside) })

	l := NewLocal(dir, "/uploads")
	require.NoError(t, l.Delete(context.Background(), "../keep.txt"))

	_, err := os.Stat(outside)
	assert.NoError(t, err)
}

func TestFromConfig(t *testing.T) {
	res, err := FromConfig(context.Background(), config.StorageConfig{Driver: "local", LocalDir: t.TempDir(), LocalURLPrefix: "/u"})
	require.NoError(t, err)
	assert.Equal(t, "local", res.Driver)

	_, err = FromConfig(context.Background(), config.StorageConfig{Driver: "s3"})
	assert.Error(t, err)

	_, err = FromConfig(context.Background(), config.StorageConfig{Driver: "ftp"})
	assert.Error(t, err)
}
