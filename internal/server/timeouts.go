package server

import "time"

const (
	readTimeout  = 10 * time.Second
	writeTimeout = 10 * time.Second
	idleTimeout  = 60 * time.Second

	// Publishing runs under the write lock, so retries stay short.
	publishAttempts = 2
	publishBackoff  = 50 * time.Millisecond
)

// shutdownTimeout remains a var for tests to override.
var shutdownTimeout = 10 * time.Second
