package images

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store keeps uploaded event images on the local filesystem. References
// handed out are file names relative to the store directory, so they stay
// valid if the directory moves between deployments.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("image store: dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("image store: create dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// Save writes the uploaded image under a fresh name and returns its
// reference.
func (s *Store) Save(src io.Reader, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("image store: unsupported file type %q", ext)
	}

	ref := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(s.dir, ref))
	if err != nil {
		return "", fmt.Errorf("image store: create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("image store: write file: %w", err)
	}
	return ref, nil
}

// Remove deletes a stored image. A reference that no longer exists is not an
// error: deletion is best effort and the event row is already gone.
func (s *Store) Remove(ref string) error {
	if ref == "" {
		return nil
	}
	// References are bare file names; reject anything trying to escape the
	// store directory.
	if filepath.Base(ref) != ref {
		return fmt.Errorf("image store: invalid reference %q", ref)
	}
	if err := os.Remove(filepath.Join(s.dir, ref)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("image store: remove %s: %w", ref, err)
	}
	return nil
}

// Open returns the stored image for serving.
func (s *Store) Open(ref string) (*os.File, error) {
	if filepath.Base(ref) != ref {
		return nil, fmt.Errorf("image store: invalid reference %q", ref)
	}
	return os.Open(filepath.Join(s.dir, ref))
}
