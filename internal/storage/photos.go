// Package storage persists uploaded files.
package storage

import (
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// URLPrefix is the public path the upload root is served under.
const URLPrefix = "/uploads"

// sniffLen is how many leading bytes are inspected to detect the file type.
const sniffLen = 3072

var (
	// ErrNotImage is returned for uploads whose content is not an image.
	ErrNotImage = errors.New("only image uploads are allowed")
	// ErrTooLarge is returned for uploads above the configured size.
	ErrTooLarge = errors.New("file exceeds the upload size limit")
)

// PhotoStore saves maintenance photos below a root directory.
type PhotoStore struct {
	fs       afero.Fs
	maxBytes int64
}

// NewPhotoStore creates a store rooted at dir on the local disk.
func NewPhotoStore(dir string, maxBytes int64) *PhotoStore {
	return NewPhotoStoreFs(afero.NewBasePathFs(afero.NewOsFs(), dir), maxBytes)
}

// NewPhotoStoreFs creates a store over an arbitrary filesystem whose root is
// the upload root.
func NewPhotoStoreFs(fs afero.Fs, maxBytes int64) *PhotoStore {
	return &PhotoStore{fs: fs, maxBytes: maxBytes}
}

// SaveMaintenancePhoto writes one photo for a maintenance request and returns
// its public URL. The content is sniffed; the client's content type is not
// trusted.
func (s *PhotoStore) SaveMaintenancePhoto(requestID uint, filename string, r io.Reader) (string, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	head = head[:n]

	if n == 0 || !strings.HasPrefix(mimetype.Detect(head).String(), "image/") {
		return "", fmt.Errorf("%w: %s", ErrNotImage, filename)
	}

	dir := maintenanceDir(requestID)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	name := uuid.NewString() + "-" + SanitizeFilename(filename)
	rel := path.Join(dir, name)

	f, err := s.fs.Create(rel)
	if err != nil {
		return "", fmt.Errorf("failed to create upload: %w", err)
	}

	limit := s.maxBytes - int64(n)
	written, err := io.Copy(f, io.MultiReader(
		strings.NewReader(string(head)),
		io.LimitReader(r, limit+1),
	))
	closeErr := f.Close()
	if err == nil && written > s.maxBytes {
		err = fmt.Errorf("%w: %s", ErrTooLarge, filename)
	}
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = s.fs.Remove(rel)
		return "", err
	}

	return URLPrefix + "/" + rel, nil
}

// Remove deletes one stored photo by its public URL.
func (s *PhotoStore) Remove(url string) error {
	rel := strings.TrimPrefix(url, URLPrefix+"/")
	if rel == url || !strings.HasPrefix(rel, "maintenance/") {
		return fmt.Errorf("not a stored photo: %s", url)
	}
	return s.fs.Remove(path.Clean(rel))
}

// RemoveMaintenance deletes every stored photo of a maintenance request.
func (s *PhotoStore) RemoveMaintenance(requestID uint) error {
	return s.fs.RemoveAll(maintenanceDir(requestID))
}

func maintenanceDir(requestID uint) string {
	return path.Join("maintenance", strconv.FormatUint(uint64(requestID), 10))
}

// SanitizeFilename reduces a client-supplied name to a safe base name.
func SanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	cleaned := strings.Trim(b.String(), ".")
	if cleaned == "" {
		return "photo"
	}
	if len(cleaned) > 100 {
		cleaned = cleaned[len(cleaned)-100:]
	}
	return cleaned
}
