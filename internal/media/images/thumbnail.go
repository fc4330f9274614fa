package images

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
)

// Thumbnail widths accepted by Thumbnailer.
const (
	MinThumbWidth = 64
	MaxThumbWidth = 1600
)

// Thumbnailer serves width-bounded JPEG copies of library images and keeps
// them in a Storage so each size is generated once.
type Thumbnailer struct {
	cache *Storage
	root  string
}

// NewThumbnailer resizes images found under root and caches results in cache.
func NewThumbnailer(root string, cache *Storage) *Thumbnailer {
	return &Thumbnailer{root: root, cache: cache}
}

// Thumbnail returns the cache path of relPath resized to width. Images
// narrower than width are re-encoded at their own size.
func (t *Thumbnailer) Thumbnail(relPath string, width int) (string, error) {
	if width < MinThumbWidth || width > MaxThumbWidth {
		return "", fmt.Errorf("width must be between %d and %d", MinThumbWidth, MaxThumbWidth)
	}

	src, err := t.resolve(relPath)
	if err != nil {
		return "", err
	}

	key := Key(relPath, strconv.Itoa(width))
	if t.cache.Exists(key) {
		return t.cache.Path(key), nil
	}

	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	if img.Bounds().Dx() > width {
		img = imaging.Resize(img, width, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(82)); err != nil {
		return "", fmt.Errorf("encode thumbnail: %w", err)
	}
	if err := t.cache.Save(key, buf.Bytes()); err != nil {
		return "", err
	}
	return t.cache.Path(key), nil
}

// resolve joins relPath onto root and rejects paths that escape it.
func (t *Thumbnailer) resolve(relPath string) (string, error) {
	clean := filepath.Clean("/" + relPath)
	full := filepath.Join(t.root, clean)
	rel, err := filepath.Rel(t.root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q is outside the library", relPath)
	}
	return full, nil
}
