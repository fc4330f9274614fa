package providers

import "time"

const (
	// shutdownTimeout is the maximum time to wait for graceful shutdown of services.
	shutdownTimeout = 30 * time.Second

	// kvGCInterval is how often the answer cache's value log is compacted.
	kvGCInterval = 10 * time.Minute
)
