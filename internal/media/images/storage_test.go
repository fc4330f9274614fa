package images

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStorage(t *testing.T) *Storage {
	t.Helper()
	storage, err := NewStorage(t.TempDir(), "thumbs")
	require.NoError(t, err)
	return storage
}

// gradientPNG returns a w x h PNG with a horizontal gradient.
func gradientPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: uint8(x * 255 / w), G: 120, B: uint8(y * 255 / h), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestNewStorage(t *testing.T) {
	t.Run("creates subdirectory", func(t *testing.T) {
		tmpDir := t.TempDir()

		storage, err := NewStorage(tmpDir, "thumbs")
		require.NoError(t, err)
		require.NotNil(t, storage)

		info, err := os.Stat(filepath.Join(tmpDir, "thumbs"))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("returns error for empty path", func(t *testing.T) {
		storage, err := NewStorage("", "thumbs")
		assert.Error(t, err)
		assert.Nil(t, storage)
		assert.Contains(t, err.Error(), "base path cannot be empty")
	})

	t.Run("returns error for empty subdir", func(t *testing.T) {
		_, err := NewStorage(t.TempDir(), "")
		assert.Error(t, err)
	})
}

func TestStorage_SaveGetClear(t *testing.T) {
	storage := setupTestStorage(t)

	require.Error(t, storage.Save("", []byte("x")))
	require.Error(t, storage.Save("a", nil))

	require.NoError(t, storage.Save("a", []byte("first")))
	require.NoError(t, storage.Save("a", []byte("second")))

	data, err := storage.Get("a")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), data)
	assert.True(t, storage.Exists("a"))
	assert.False(t, storage.Exists(""))

	_, err = storage.Get("missing")
	assert.ErrorContains(t, err, "image not found")

	require.NoError(t, storage.Clear())
	assert.False(t, storage.Exists("a"))
}

func TestKey_Stable(t *testing.T) {
	assert.Equal(t, Key("a/b.png", "320"), Key("a/b.png", "320"))
	assert.NotEqual(t, Key("a/b.png", "320"), Key("a/b.png", "640"))
	assert.NotEqual(t, Key("ab", "c"), Key("a", "bc"))
	assert.Len(t, Key("x"), 32)
}

func TestProbeBytes(t *testing.T) {
	info, err := ProbeBytes(gradientPNG(t, 200, 100))
	require.NoError(t, err)

	assert.Equal(t, "image/png", info.MIME)
	assert.Equal(t, 200, info.Width)
	assert.Equal(t, 100, info.Height)
	assert.NotEmpty(t, info.BlurHash)

	_, err = ProbeBytes([]byte("plain text, not an image"))
	assert.ErrorIs(t, err, ErrNotImage)
}

func TestThumbnailer(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "img"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "img", "cho.png"), gradientPNG(t, 400, 200), 0o644))

	thumbs := NewThumbnailer(root, setupTestStorage(t))

	path, err := thumbs.Thumbnail("img/cho.png", 100)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	info, err := ProbeBytes(data)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", info.MIME)
	assert.Equal(t, 100, info.Width)
	assert.Equal(t, 50, info.Height)

	again, err := thumbs.Thumbnail("img/cho.png", 100)
	require.NoError(t, err)
	assert.Equal(t, path, again)

	_, err = thumbs.Thumbnail("img/cho.png", 10)
	assert.Error(t, err)

	_, err = thumbs.Thumbnail("img/missing.png", 100)
	assert.Error(t, err)
}
