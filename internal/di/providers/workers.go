package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/disanlib/reader-server/internal/config"
	"github.com/disanlib/reader-server/internal/logger"
	"github.com/disanlib/reader-server/internal/service"
	"github.com/disanlib/reader-server/internal/watcher"
)

// bootTimeout bounds work done while providers initialize, such as the first
// library load.
const bootTimeout = 2 * time.Minute

func bootContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), bootTimeout)
}

// FileWatcherHandle wraps the file watcher with shutdown capability.
type FileWatcherHandle struct {
	*watcher.Watcher
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *FileWatcherHandle) Shutdown() error {
	h.cancel()
	if h.Watcher == nil {
		return nil
	}
	return h.Watcher.Stop()
}

// ProvideFileWatcher reloads the library when its files change. It is a
// no-op for the embedded seed library or when watching is disabled.
func ProvideFileWatcher(i do.Injector) (*FileWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	libFS := do.MustInvoke[*LibraryFS](i)
	libraryService := do.MustInvoke[*service.LibraryService](i)

	ctx, cancel := context.WithCancel(context.Background())
	if libFS.Root == "" || !cfg.Library.Watch {
		log.Info("Library hot reload disabled")
		return &FileWatcherHandle{cancel: cancel}, nil
	}

	w, err := watcher.New(log.Component("watcher"), watcher.Options{IgnoreHidden: true})
	if err != nil {
		cancel()
		return nil, err
	}
	if err := w.Watch(libFS.Root); err != nil {
		cancel()
		return nil, err
	}
	log.Info("Watching library", "path", libFS.Root)

	go func() {
		if err := w.Start(ctx); err != nil {
			log.Error("File watcher error", "error", err)
		}
	}()
	go libraryService.Watch(ctx, w)

	return &FileWatcherHandle{Watcher: w, cancel: cancel}, nil
}

// KVGarbageCollector periodically compacts the answer cache.
type KVGarbageCollector struct {
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (j *KVGarbageCollector) Shutdown() error {
	j.cancel()
	return nil
}

// ProvideKVGarbageCollector starts the answer cache compaction loop.
func ProvideKVGarbageCollector(i do.Injector) (*KVGarbageCollector, error) {
	kv := do.MustInvoke[*KVStoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		ticker := time.NewTicker(kvGCInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := kv.RunGC(); err != nil {
					log.Warn("Answer cache GC failed", "error", err)
				}
			}
		}
	}()

	return &KVGarbageCollector{cancel: cancel}, nil
}
