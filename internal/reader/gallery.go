package reader

import "github.com/disanlib/reader-server/internal/domain"

// GalleryCursor steps through the images of a gallery. It does not wrap.
type GalleryCursor struct {
	images []domain.ImageRef
	index  int
}

// NewGalleryCursor starts at the first image of m.
func NewGalleryCursor(m domain.Media) *GalleryCursor {
	return &GalleryCursor{images: domain.MediaImages(m)}
}

// Len returns the number of images.
func (c *GalleryCursor) Len() int { return len(c.images) }

// Index returns the current image index.
func (c *GalleryCursor) Index() int { return c.index }

// Current returns the current image, or false for an empty gallery.
func (c *GalleryCursor) Current() (domain.ImageRef, bool) {
	if len(c.images) == 0 {
		return domain.ImageRef{}, false
	}
	return c.images[c.index], true
}

// HasNext reports whether Next would move.
func (c *GalleryCursor) HasNext() bool { return c.index < len(c.images)-1 }

// HasPrevious reports whether Previous would move.
func (c *GalleryCursor) HasPrevious() bool { return c.index > 0 }

// Next moves forward one image and reports whether it moved.
func (c *GalleryCursor) Next() bool {
	if !c.HasNext() {
		return false
	}
	c.index++
	return true
}

// Previous moves back one image and reports whether it moved.
func (c *GalleryCursor) Previous() bool {
	if !c.HasPrevious() {
		return false
	}
	c.index--
	return true
}

// Seek moves to index i, clamped into range.
func (c *GalleryCursor) Seek(i int) {
	if len(c.images) == 0 {
		c.index = 0
		return
	}
	c.index = min(max(i, 0), len(c.images)-1)
}
