// Package memory is an in-process Exporter for tests and dry runs.
package memory

import (
	"context"
	"fmt"
	"sync"

	"fintrack/internal/export"
)

type Exporter struct {
	mu      sync.Mutex
	reports []export.Report
}

var _ export.Exporter = (*Exporter)(nil)

func New() *Exporter { return &Exporter{} }

// Export records r and returns a synthetic reference.
func (e *Exporter) Export(ctx context.Context, r export.Report) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reports = append(e.reports, r)
	return fmt.Sprintf("mem:%d", len(e.reports)), nil
}

// Reports returns a copy of everything exported so far.
func (e *Exporter) Reports() []export.Report {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]export.Report(nil), e.reports...)
}
