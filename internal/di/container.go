// Package di provides dependency injection configuration for the reader server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/disanlib/reader-server/internal/api"
	"github.com/disanlib/reader-server/internal/chat"
	"github.com/disanlib/reader-server/internal/config"
	"github.com/disanlib/reader-server/internal/di/providers"
	"github.com/disanlib/reader-server/internal/logger"
	"github.com/disanlib/reader-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Database layer
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideSQLite)
	do.Provide(injector, providers.ProvideKVStore)

	// Storage layer
	do.Provide(injector, providers.ProvideLibraryFS)
	do.Provide(injector, providers.ProvideMediaSource)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideSearchService)

	// Business services
	do.Provide(injector, providers.ProvideLibraryService)
	do.Provide(injector, providers.ProvidePreferencesService)
	do.Provide(injector, providers.ProvideReaderService)
	do.Provide(injector, providers.ProvideResponder)
	do.Provide(injector, providers.ProvideChatService)

	// Workers
	do.Provide(injector, providers.ProvideFileWatcher)
	do.Provide(injector, providers.ProvideKVGarbageCollector)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and starts the workers and HTTP server.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.SSEManagerHandle](injector)
	_ = do.MustInvoke[*providers.SQLiteHandle](injector)
	_ = do.MustInvoke[*providers.KVStoreHandle](injector)
	_ = do.MustInvoke[*providers.LibraryFS](injector)
	_ = do.MustInvoke[*api.MediaSource](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)
	_ = do.MustInvoke[*service.SearchService](injector)

	// Business services
	_ = do.MustInvoke[*service.LibraryService](injector)
	_ = do.MustInvoke[*service.PreferencesService](injector)
	_ = do.MustInvoke[*service.ReaderService](injector)
	_ = do.MustInvoke[chat.Responder](injector)
	_ = do.MustInvoke[*providers.ChatServiceHandle](injector)

	// Workers
	_ = do.MustInvoke[*providers.FileWatcherHandle](injector)
	_ = do.MustInvoke[*providers.KVGarbageCollector](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
