package providers

import (
	"github.com/samber/do/v2"

	"github.com/disanlib/reader-server/internal/chat"
	"github.com/disanlib/reader-server/internal/config"
	"github.com/disanlib/reader-server/internal/domain"
	"github.com/disanlib/reader-server/internal/library"
	"github.com/disanlib/reader-server/internal/logger"
	"github.com/disanlib/reader-server/internal/service"
)

// ProvideLibraryService provides the catalog and performs the first load.
func ProvideLibraryService(i do.Injector) (*service.LibraryService, error) {
	log := do.MustInvoke[*logger.Logger](i)
	libFS := do.MustInvoke[*LibraryFS](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)

	loader := library.NewLoader(libFS.FS, log.Component("library"))
	svc := service.NewLibraryService(loader, indexHandle.SearchIndex, sseHandle.Manager, log.Component("library"))

	ctx, cancel := bootContext()
	defer cancel()
	result, err := svc.Reload(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range result.Problems {
		log.Warn("Library problem", "problem", p)
	}

	return svc, nil
}

// ProvidePreferencesService provides reader preferences with the configured defaults.
func ProvidePreferencesService(i do.Injector) (*service.PreferencesService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	db := do.MustInvoke[*SQLiteHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)

	defaults := domain.NewReaderPreferences()
	defaults.SetTheme(domain.ThemeKey(cfg.Reader.DefaultTheme))
	defaults.SetFontSize(cfg.Reader.DefaultFontSize)

	return service.NewPreferencesService(db.Store, sseHandle.Manager, log.Component("preferences"), defaults), nil
}

// ProvideReaderService provides reading sessions.
func ProvideReaderService(i do.Injector) (*service.ReaderService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	db := do.MustInvoke[*SQLiteHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	libraryService := do.MustInvoke[*service.LibraryService](i)
	prefs := do.MustInvoke[*service.PreferencesService](i)

	return service.NewReaderService(libraryService, prefs, db.Store, sseHandle.Manager, log.Component("reader"), cfg.Reader.SessionTTL), nil
}

// ProvideResponder provides the chat responder selected by configuration.
func ProvideResponder(i do.Injector) (chat.Responder, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	r, err := chat.NewResponder(chat.Settings{
		Provider:        cfg.Chat.Provider,
		GeminiAPIKey:    cfg.Chat.GeminiAPIKey,
		GeminiModel:     cfg.Chat.GeminiModel,
		GeminiBaseURL:   cfg.Chat.GeminiBaseURL,
		AnthropicAPIKey: cfg.Chat.AnthropicAPIKey,
		AnthropicModel:  cfg.Chat.AnthropicModel,
		RulesPath:       cfg.Chat.RulesPath,
		Timeout:         cfg.Chat.Timeout,
	}, log.Component("chat"))
	if err != nil {
		return nil, err
	}

	log.Info("Chat responder ready", "provider", r.Name(), "remote", chat.IsRemote(r))
	return r, nil
}

// ChatServiceHandle wraps the chat service with shutdown capability.
type ChatServiceHandle struct {
	*service.ChatService
}

// Shutdown implements do.Shutdownable.
func (h *ChatServiceHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideChatService provides conversations backed by SQLite and the answer cache.
func ProvideChatService(i do.Injector) (*ChatServiceHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	db := do.MustInvoke[*SQLiteHandle](i)
	kv := do.MustInvoke[*KVStoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	responder := do.MustInvoke[chat.Responder](i)

	svc := service.NewChatService(db.Store, kv.Store, responder, sseHandle.Manager, log.Component("chat"), service.ChatOptions{
		CacheTTL:          cfg.Chat.CacheTTL,
		Timeout:           cfg.Chat.Timeout,
		MessagesPerMinute: cfg.Chat.MessagesPerMinute,
	})
	return &ChatServiceHandle{ChatService: svc}, nil
}
