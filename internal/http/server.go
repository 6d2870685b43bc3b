// Package http serves the read-only reporting API over a memoized snapshot
// of the ledger and budget stores.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
)

// Options tunes the dashboard server. Zero values pick defaults.
type Options struct {
	SnapshotTTL time.Duration
	// Categories are the canonical budget rows shown even without spending.
	Categories        []string
	RequestsPerMinute int
	Logger            *log.Logger
	// Now supplies the reference month when a request names none.
	Now func() time.Time
}

type Server struct {
	http.Server
	snapshots  *SnapshotLoader
	limiter    *ratelimit.Limiter
	detector   *security.Detector
	janitor    *cache.Janitor
	categories []string
	now        func() time.Time

	stopJanitor  context.CancelFunc
	shutdownOnce sync.Once
}

// NewServer wires routes and middleware and starts the background cache
// janitor and rate limiter cleanup. Call Shutdown to stop them.
func NewServer(addr string, ledger LedgerSource, budget BudgetSource, opts Options) *Server {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = log.New(log.DefaultConfig())
	}
	logger := opts.Logger.WithComponent(log.ComponentDashboard)

	s := &Server{
		snapshots:  NewSnapshotLoader(ledger, budget, opts.SnapshotTTL),
		limiter:    ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RequestsPerMinute}),
		detector:   security.NewDetector(),
		categories: opts.Categories,
		now:        opts.Now,
	}
	s.janitor = cache.NewJanitor(s.snapshots)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /api/overview", s.handleOverview)
	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("GET /api/trend", s.handleTrend)
	mux.HandleFunc("GET /api/income", s.handleIncome)
	mux.HandleFunc("GET /api/budgets", s.handleBudgets)
	mux.HandleFunc("GET /api/transactions", s.handleTransactions)
	mux.HandleFunc("GET /api/recent", s.handleRecent)

	limited := s.limiter.Middleware(s.detector.ClientIP, func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, s.detector.ClientIP(r))
		writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded")
	})

	var h http.Handler = mux
	h = limited(h)
	h = s.detector.Middleware(h)
	h = security.Headers(security.DefaultHeadersConfig())(h)
	h = log.Middleware(logger)(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.stopJanitor = cancel
	if opts.SnapshotTTL > 0 {
		s.janitor.Start(ctx, opts.SnapshotTTL)
	}
	s.limiter.Start()
	return s
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.stopJanitor()
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
