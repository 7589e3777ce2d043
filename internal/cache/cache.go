// Package cache holds the soft state for the committee numbering authority.
package cache

import (
	"context"
	"time"
)

// DefaultKey is the storage key of the cached committee number.
const DefaultKey = "committee:current_number"

// NumberCache stores the most recently announced committee number.
// Entries are reconstructable from the transition log, so callers treat
// every error as a miss.
type NumberCache interface {
	// Get returns the cached number and whether one was present.
	Get(ctx context.Context) (string, bool, error)

	// Set stores number for ttl. A non-positive ttl keeps it indefinitely.
	Set(ctx context.Context, number string, ttl time.Duration) error

	// Clear removes the cached number.
	Clear(ctx context.Context) error
}
