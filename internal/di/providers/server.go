package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/disanlib/reader-server/internal/api"
	"github.com/disanlib/reader-server/internal/config"
	"github.com/disanlib/reader-server/internal/logger"
	"github.com/disanlib/reader-server/internal/service"
)

// Version is reported by the API document. Overridden at build time.
var Version = "dev"

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	db := do.MustInvoke[*SQLiteHandle](i)
	kv := do.MustInvoke[*KVStoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	media := do.MustInvoke[*api.MediaSource](i)

	services := &api.Services{
		Library:     do.MustInvoke[*service.LibraryService](i),
		Preferences: do.MustInvoke[*service.PreferencesService](i),
		Reader:      do.MustInvoke[*service.ReaderService](i),
		Chat:        do.MustInvoke[*ChatServiceHandle](i).ChatService,
		Search:      do.MustInvoke[*service.SearchService](i),
		Events:      sseHandle.Manager,
	}

	handler := api.NewServer(services, api.Backends{Database: db.Store, KV: kv.Store}, *media, api.Options{
		Name:               cfg.Server.Name,
		Version:            Version,
		CORSOrigins:        cfg.Server.CORSOrigins,
		RateLimitPerMinute: cfg.Server.RateLimitPerMinute,
	}, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}
