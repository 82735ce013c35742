// Package timeouts provides centralized timeout values for handler
// operations.
//
// These are used with context.WithTimeout around store calls so every
// handler budgets I/O the same way.
//
// Guidelines:
//   - Ping: health checks and connectivity verification
//   - Short: single-document reads or lookups
//   - Medium: list queries, simple creates/updates
//   - Long: writes with cleanup, operations touching multiple collections
package timeouts

import "time"

const (
	ping   = 2 * time.Second
	short  = 5 * time.Second
	medium = 10 * time.Second
	long   = 30 * time.Second
)

// Ping returns the timeout for health checks.
func Ping() time.Duration { return ping }

// Short returns the timeout for single-document reads.
func Short() time.Duration { return short }

// Medium returns the timeout for list queries and simple writes.
func Medium() time.Duration { return medium }

// Long returns the timeout for writes with side effects or retries.
func Long() time.Duration { return long }
