// Package telemetry provides hierarchical timing collection for operations.
//
// Collectors travel through a context so callers can instrument code without
// changing function signatures. Without a collector every call is a no-op.
//
// Example usage:
//
//	collector := telemetry.NewTimingCollector()
//	ctx := telemetry.WithCollector(context.Background(), collector)
//
//	timer := telemetry.StartTimer(ctx, "check bills.txt")
//	ctx = telemetry.WithRootTimer(ctx, timer)
//	result, err := ledger.Process(ctx, rules, source) // nests its own timers
//	timer.End()
//
//	collector.Report(os.Stderr, output.NewStyles(os.Stderr))
package telemetry

import (
	"context"
	"io"

	"github.com/robinvdvleuten/billtext/output"
)

type contextKey int

const (
	collectorKey contextKey = iota
	rootTimerKey
)

// Collector collects timings for a run.
type Collector interface {
	// Start begins timing an operation.
	Start(name string) Timer

	// Report writes the collected timings. styles may be nil.
	Report(w io.Writer, styles *output.Styles)
}

// Timer tracks a single operation's timing.
type Timer interface {
	End()

	// Child creates a timer nested under this one.
	Child(name string) Timer
}

// WithCollector adds a collector to a context.
func WithCollector(ctx context.Context, collector Collector) context.Context {
	return context.WithValue(ctx, collectorKey, collector)
}

// FromContext extracts the collector from context, falling back to a
// collector that does nothing.
func FromContext(ctx context.Context) Collector {
	if collector, ok := ctx.Value(collectorKey).(Collector); ok {
		return collector
	}
	return noOpCollector{}
}

// WithRootTimer makes timer the parent of every timer started through
// StartTimer with the returned context.
func WithRootTimer(ctx context.Context, timer Timer) context.Context {
	return context.WithValue(ctx, rootTimerKey, timer)
}

// StartTimer starts a timer nested under the context's root timer, or a
// top-level timer on the context's collector when there is none.
func StartTimer(ctx context.Context, name string) Timer {
	if root, ok := ctx.Value(rootTimerKey).(Timer); ok {
		return root.Child(name)
	}
	return FromContext(ctx).Start(name)
}
