// Package dedupe tracks which player sessions have already been recorded.
package dedupe

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultMaxSize = 50000

// Deduper records seen keys to ensure at-most-once recording.
type Deduper interface {
	// SeenAndRecord atomically checks if key was seen and records it if not.
	// Returns true if key was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord forgets a key so a failed record can be retried.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

// Key builds the dedupe key of one player's participation in one session.
func Key(player, sessionID string) string {
	return player + "\x00" + sessionID
}

// inMemoryDeduper keeps the most recently recorded keys in an LRU cache.
// Once full, the least recently seen key is evicted and would be accepted again.
type inMemoryDeduper struct {
	maxSize int
	seen    *lru.Cache[string, struct{}]
}

// NewInMemoryDeduper creates a bounded in-memory deduper.
func NewInMemoryDeduper(opts ...Option) (Deduper, error) {
	d := &inMemoryDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}

	cache, err := lru.New[string, struct{}](d.maxSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSize, err)
	}
	d.seen = cache
	return d, nil
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	found, _ := d.seen.ContainsOrAdd(key, struct{}{})
	return found
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	d.seen.Remove(key)
}

func (d *inMemoryDeduper) Size() int64 {
	return int64(d.seen.Len())
}
