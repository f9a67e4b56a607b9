package blog

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"blogyard/domain"
)

// Upload is an image attached to a post form.
type Upload struct {
	Filename string
	Data     []byte
}

var imageExtensions = map[string]string{
	"image/gif":  ".gif",
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

// Media stores uploaded images under Root/posts with random names.
type Media struct {
	Root string
}

// Save writes the upload and returns its path relative to Root, using
// forward slashes so it can be served under /media/.
func (m *Media) Save(u Upload) (string, error) {
	if len(u.Data) == 0 {
		return "", domain.NewValidationError("image", "image is empty")
	}
	ext, ok := imageExtensions[http.DetectContentType(u.Data)]
	if !ok {
		return "", domain.NewValidationError("image", "file is not a supported image")
	}
	// The sniffed type decides the extension; the client's name only picks
	// between the two spellings of jpeg.
	if e := strings.ToLower(filepath.Ext(u.Filename)); e == ".jpeg" && ext == ".jpg" {
		ext = e
	}

	rel := path.Join("posts", uuid.NewString()+ext)
	full := filepath.Join(m.Root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}
	if err := os.WriteFile(full, u.Data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return rel, nil
}

// Remove deletes an image saved by Save. A missing file is not an error.
func (m *Media) Remove(rel string) error {
	err := os.Remove(filepath.Join(m.Root, filepath.FromSlash(rel)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove image: %w", err)
	}
	return nil
}
