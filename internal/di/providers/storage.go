package providers

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/disanlib/reader-server/internal/api"
	"github.com/disanlib/reader-server/internal/config"
	"github.com/disanlib/reader-server/internal/library"
	"github.com/disanlib/reader-server/internal/logger"
	"github.com/disanlib/reader-server/internal/media/images"
)

// LibraryFS is the file tree books are loaded from.
type LibraryFS struct {
	fs.FS
	// Root is the directory on disk, empty for the embedded seed library.
	Root string
}

// ProvideLibraryFS provides the configured library directory, or the
// embedded seed library when none is set.
func ProvideLibraryFS(i do.Injector) (*LibraryFS, error) {
	cfg := do.MustInvoke[*config.Config](i)

	if cfg.Library.Path == "" {
		return &LibraryFS{FS: library.Seed()}, nil
	}

	info, err := os.Stat(cfg.Library.Path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &fs.PathError{Op: "open", Path: cfg.Library.Path, Err: fs.ErrInvalid}
	}
	return &LibraryFS{FS: os.DirFS(cfg.Library.Path), Root: cfg.Library.Path}, nil
}

// ProvideMediaSource provides library image serving, with resized copies
// cached under the data directory when the library lives on disk.
func ProvideMediaSource(i do.Injector) (*api.MediaSource, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	libFS := do.MustInvoke[*LibraryFS](i)

	src := &api.MediaSource{Files: libFS.FS}
	if libFS.Root == "" {
		return src, nil
	}

	thumbs, err := images.NewStorage(cfg.Data.BasePath, "thumbs")
	if err != nil {
		return nil, err
	}
	src.Thumbs = images.NewThumbnailer(libFS.Root, thumbs)

	log.Info("Thumbnail cache initialized", "path", filepath.Join(cfg.Data.BasePath, "thumbs"))
	return src, nil
}
