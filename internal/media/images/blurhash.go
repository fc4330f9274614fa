package images

import (
	"fmt"
	"image"

	"github.com/bbrks/go-blurhash"
	"github.com/disintegration/imaging"
)

// blurHashSize bounds the thumbnail the hash is computed from. The result is
// practically identical to hashing the full image.
const blurHashSize = 64

// BlurHash encodes img with 4x3 components (about 20-30 characters).
func BlurHash(img image.Image) (string, error) {
	thumb := img
	if b := img.Bounds(); b.Dx() > blurHashSize || b.Dy() > blurHashSize {
		thumb = imaging.Fit(img, blurHashSize, blurHashSize, imaging.Box)
	}

	hash, err := blurhash.Encode(4, 3, thumb)
	if err != nil {
		return "", fmt.Errorf("encode blurhash: %w", err)
	}
	return hash, nil
}
