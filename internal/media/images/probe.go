// Package images inspects and resizes the illustrations that ship with the
// library: MIME sniffing, dimensions, BlurHash placeholders, and cached
// thumbnails.
package images

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"os"

	"github.com/h2non/filetype"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// ErrNotImage is returned when a file's content is not a supported image.
var ErrNotImage = errors.New("not a supported image")

// Info describes an image file.
type Info struct {
	MIME     string
	BlurHash string
	Width    int
	Height   int
}

// Probe reads the image at path and returns its type, size, and BlurHash.
func Probe(path string) (Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Info{}, fmt.Errorf("read image: %w", err)
	}
	return ProbeBytes(data)
}

// ProbeBytes is Probe for in-memory data.
func ProbeBytes(data []byte) (Info, error) {
	kind, err := filetype.Match(data)
	if err != nil || !filetype.IsImage(data) {
		return Info{}, ErrNotImage
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Info{}, fmt.Errorf("decode image: %w", err)
	}

	hash, err := BlurHash(img)
	if err != nil {
		return Info{}, err
	}

	b := img.Bounds()
	return Info{
		MIME:     kind.MIME.Value,
		BlurHash: hash,
		Width:    b.Dx(),
		Height:   b.Dy(),
	}, nil
}
