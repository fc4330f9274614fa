// Package main runs the reader HTTP server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/disanlib/reader-server/internal/di"
	"github.com/disanlib/reader-server/internal/di/providers"
	"github.com/disanlib/reader-server/internal/logger"
)

// version is set with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	providers.Version = version

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	injector := di.NewContainer()
	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "reader-server: bootstrap: %v\n", err)
		os.Exit(1)
	}

	log := do.MustInvoke[*logger.Logger](injector)
	log.Info("Reader server ready", "version", version)

	<-ctx.Done()
	stop()
	log.Info("Shutting down")

	// Handles are shut down in reverse dependency order: the HTTP server
	// first, the stores it reads from last.
	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown finished with errors", "error", err)
	}
}
