// Package timeouts provides centralized timeout values for handler
// operations. Used with context.WithTimeout around database work so that a
// slow store cannot pin a request indefinitely.
//
// Guidelines for choosing a timeout:
//   - Ping: health checks and connectivity verification
//   - Short: single-document reads or lookups
//   - Medium: list queries and single-collection writes
//   - Long: workflow operations touching multiple collections
package timeouts

import (
	"sync"
	"time"
)

// Default timeout values (used if Configure is not called).
const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
)

var (
	mu     sync.RWMutex
	ping   = DefaultPing
	short  = DefaultShort
	medium = DefaultMedium
	long   = DefaultLong
)

// Configure overrides the timeout values at startup. Zero values keep the
// current setting.
func Configure(pingD, shortD, mediumD, longD time.Duration) {
	mu.Lock()
	defer mu.Unlock()
	if pingD > 0 {
		ping = pingD
	}
	if shortD > 0 {
		short = shortD
	}
	if mediumD > 0 {
		medium = mediumD
	}
	if longD > 0 {
		long = longD
	}
}

// Ping returns the timeout for health checks.
func Ping() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return ping
}

// Short returns the timeout for single-document reads.
func Short() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return short
}

// Medium returns the timeout for list queries and simple writes.
func Medium() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return medium
}

// Long returns the timeout for multi-collection workflow operations.
func Long() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return long
}
