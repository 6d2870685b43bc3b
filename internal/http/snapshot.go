package http

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"fintrack/internal/cache"
	"fintrack/internal/core"
)

const (
	snapshotKey         = "snapshot"
	snapshotLoadTimeout = 10 * time.Second
)

type LedgerSource interface {
	Load(ctx context.Context) (core.Ledger, error)
}

type BudgetSource interface {
	Load(ctx context.Context) (core.Budget, error)
}

// Snapshot is one consistent read of both stores. Handlers compute every
// view from the same snapshot so one response never mixes two file states.
type Snapshot struct {
	Ledger   core.Ledger
	Budget   core.Budget
	LoadedAt time.Time
}

// SnapshotLoader memoizes the snapshot for ttl. Concurrent misses share one
// load. A ttl of zero disables memoization.
type SnapshotLoader struct {
	ledger LedgerSource
	budget BudgetSource
	cache  *cache.LRUCache[Snapshot]
	group  singleflight.Group
	loads  atomic.Int64
}

func NewSnapshotLoader(ledger LedgerSource, budget BudgetSource, ttl time.Duration, opts ...cache.Option) *SnapshotLoader {
	l := &SnapshotLoader{ledger: ledger, budget: budget}
	if ttl > 0 {
		l.cache = cache.NewLRUCache[Snapshot](1, ttl, opts...)
	}
	return l
}

// Load returns the memoized snapshot or reads both stores in parallel.
func (l *SnapshotLoader) Load(ctx context.Context) (Snapshot, error) {
	if l.cache != nil {
		if s, ok := l.cache.Get(snapshotKey); ok {
			return s, nil
		}
	}

	v, err, shared := l.group.Do(snapshotKey, func() (any, error) {
		// The first caller going away must not fail the callers sharing it.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), snapshotLoadTimeout)
		defer cancel()
		return l.load(ctx)
	})
	if err != nil {
		return Snapshot{}, err
	}
	if shared {
		slog.DebugContext(ctx, "Snapshot load shared")
	}
	return v.(Snapshot), nil
}

func (l *SnapshotLoader) load(ctx context.Context) (Snapshot, error) {
	var s Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ledger, err := l.ledger.Load(gctx)
		if err != nil {
			return fmt.Errorf("load ledger: %w", err)
		}
		s.Ledger = ledger
		return nil
	})
	g.Go(func() error {
		budget, err := l.budget.Load(gctx)
		if err != nil {
			return fmt.Errorf("load budget: %w", err)
		}
		s.Budget = budget
		return nil
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}

	s.LoadedAt = time.Now()
	l.loads.Add(1)
	if l.cache != nil {
		l.cache.Set(snapshotKey, s)
	}
	slog.DebugContext(ctx, "Snapshot loaded",
		"transactions", len(s.Ledger),
		"budgets", len(s.Budget))
	return s, nil
}

// Loads returns how many times the stores have actually been read.
func (l *SnapshotLoader) Loads() int64 { return l.loads.Load() }

// CleanExpired lets a cache.Janitor sweep the memoized snapshot.
func (l *SnapshotLoader) CleanExpired() int {
	if l.cache == nil {
		return 0
	}
	return l.cache.CleanExpired()
}
