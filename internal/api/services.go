package api

import (
	"context"
	"io/fs"

	"github.com/disanlib/reader-server/internal/media/images"
	"github.com/disanlib/reader-server/internal/service"
	"github.com/disanlib/reader-server/internal/sse"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Library     *service.LibraryService
	Preferences *service.PreferencesService
	Reader      *service.ReaderService
	Chat        *service.ChatService
	Search      *service.SearchService
	Events      *sse.Manager
}

// Backends are the stores checked by the health endpoint.
type Backends struct {
	Database Pinger // SQLite
	KV       Pinger // Badger answer cache
}

// MediaSource serves library image files.
type MediaSource struct {
	Files  fs.FS
	Thumbs *images.Thumbnailer // nil when the library is not on disk
}
