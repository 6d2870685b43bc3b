// Package cache memoizes values that are expensive to rebuild, such as a
// freshly loaded ledger snapshot, for a bounded time.
package cache

import (
	"context"
	"log/slog"
	"time"
)

// Cache is a keyed store with expiring entries.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Purge()
	Size() int
}

// Cleaner is implemented by caches that can drop expired entries eagerly.
type Cleaner interface {
	CleanExpired() int
}

// Janitor periodically sweeps registered caches so expired snapshots do not
// pin memory between requests.
type Janitor struct {
	caches []Cleaner
	done   chan struct{}
}

func NewJanitor(caches ...Cleaner) *Janitor {
	return &Janitor{caches: caches, done: make(chan struct{})}
}

// Start sweeps every interval until ctx is cancelled.
func (j *Janitor) Start(ctx context.Context, interval time.Duration) {
	go func() {
		defer close(j.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := j.Sweep(); n > 0 {
					slog.DebugContext(ctx, "Cache entries expired", "count", n)
				}
			}
		}
	}()
}

// Sweep cleans every cache once and returns the number of dropped entries.
func (j *Janitor) Sweep() int {
	total := 0
	for _, c := range j.caches {
		total += c.CleanExpired()
	}
	return total
}

// Done is closed once a started janitor has stopped.
func (j *Janitor) Done() <-chan struct{} { return j.done }
