// Package storage keeps uploaded menu images on the local filesystem.
package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// MaxImageSize is the largest accepted upload in bytes.
const MaxImageSize = 5 << 20

var (
	ErrUnsupportedType = errors.New("image must be jpeg, png, webp or gif")
	ErrTooLarge        = errors.New("image exceeds 5 MB")
	ErrEmptyFile       = errors.New("image is empty")
)

var allowedTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

// Local stores files in Dir and hands out URLs under URLPrefix.
type Local struct {
	Dir       string
	URLPrefix string
}

func NewLocal(dir, urlPrefix string) *Local {
	return &Local{Dir: dir, URLPrefix: strings.TrimSuffix(urlPrefix, "/")}
}

// Save sniffs r by content, rejects anything that is not an allowed image
// and writes it under a generated name. Returns the public URL.
func (l *Local) Save(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageSize+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return "", ErrEmptyFile
	}
	if len(data) > MaxImageSize {
		return "", ErrTooLarge
	}

	mtype := mimetype.Detect(data)
	if !mimetype.EqualsAny(mtype.String(), allowedTypes...) {
		return "", ErrUnsupportedType
	}

	if err := os.MkdirAll(l.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create image dir: %w", err)
	}

	name := uuid.NewString() + mtype.Extension()
	f, err := os.OpenFile(filepath.Join(l.Dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	if _, err := io.Copy(f, bytes.NewReader(data)); err != nil {
		f.Close()
		return "", fmt.Errorf("write image file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close image file: %w", err)
	}

	return path.Join(l.URLPrefix, name), nil
}

// Delete removes the file behind a URL returned by Save. URLs outside
// URLPrefix and files that are already gone are ignored.
func (l *Local) Delete(url string) error {
	if url == "" || !strings.HasPrefix(url, l.URLPrefix+"/") {
		return nil
	}
	name := filepath.Base(url)
	err := os.Remove(filepath.Join(l.Dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove image: %w", err)
	}
	return nil
}
