package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/disanlib/reader-server/internal/config"
	"github.com/disanlib/reader-server/internal/logger"
	"github.com/disanlib/reader-server/internal/sse"
	"github.com/disanlib/reader-server/internal/store"
	"github.com/disanlib/reader-server/internal/store/sqlite"
)

// SSEManagerHandle wraps the SSE manager with its context for lifecycle management.
type SSEManagerHandle struct {
	*sse.Manager
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SSEManagerHandle) Shutdown() error {
	h.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Manager.Shutdown(ctx)
}

// ProvideSSEManager provides the server-sent events manager.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	manager := sse.NewManager(log.Component("sse"))

	// Start in background
	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	log.Info("SSE manager started")

	return &SSEManagerHandle{
		Manager: manager,
		cancel:  cancel,
	}, nil
}

// SQLiteHandle wraps the relational store with shutdown capability.
type SQLiteHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *SQLiteHandle) Shutdown() error {
	return h.Close()
}

// ProvideSQLite provides the store for preferences, progress, and chat history.
func ProvideSQLite(i do.Injector) (*SQLiteHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	db, err := sqlite.Open(cfg.SQLitePath(), log.Component("sqlite"))
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", cfg.SQLitePath())
	return &SQLiteHandle{Store: db}, nil
}

// KVStoreHandle wraps the badger answer cache with shutdown capability.
type KVStoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *KVStoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideKVStore provides the badger store holding cached chat answers.
func ProvideKVStore(i do.Injector) (*KVStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	kv, err := store.Open(store.Options{
		Path:   cfg.KVPath(),
		Logger: log.Component("kv"),
	})
	if err != nil {
		return nil, err
	}

	count, _ := kv.AnswerCount(context.Background())
	log.Info("Answer cache initialized", "path", cfg.KVPath(), "answers", count)
	return &KVStoreHandle{Store: kv}, nil
}
