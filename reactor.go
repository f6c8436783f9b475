// Package reactor is a reactive dataflow engine: Variables hold source
// values, Computeds derive values from other nodes, Actions run side
// effects, and a process-wide dependency graph keeps everything
// consistent under at-most-once recomputation per logical update.
//
// The public surface (Var, Calc, NewAction, Handle, Batch) is a thin,
// type-safe layer over an untyped engine in the internal package, the
// same split the teacher package used between its generic sig package
// and internal.Signal/Computed.
package reactor

import (
	"log/slog"

	"github.com/kestrel-dev/reactor/internal"
)

// as converts an any-typed engine value back to T, treating a nil
// (uninitialized read path) as the zero value instead of panicking.
func as[T any](v any) T {
	if v == nil {
		var zero T
		return zero
	}
	return v.(T)
}

// Option configures a node at construction time (trigger/invalidation
// policy, display name). Var, Calc and NewAction all accept Options.
type Option func(*internal.ReactiveNode)

// WithName attaches a display name used by Debug and log output.
func WithName(name string) Option {
	return func(n *internal.ReactiveNode) {
		internal.DefaultGraph().SetName(n, name)
	}
}

// WithTriggerAlways makes the node recompute on every upstream
// notification regardless of whether the upstream value changed
// (spec.md §4.6 "Always").
func WithTriggerAlways() Option {
	return func(n *internal.ReactiveNode) {
		internal.SetTrigger(n, internal.TriggerAlways)
	}
}

// WithTriggerFilter makes the node recompute only when pred returns
// true, re-evaluated on every upstream notification (spec.md §4.6
// "Filter").
func WithTriggerFilter(pred func() bool) Option {
	return func(n *internal.ReactiveNode) {
		internal.SetTrigger(n, internal.TriggerFilter)
		internal.SetFilter(n, pred)
	}
}

// WithInvalidationClose cascades-closes every transitive observer once
// this node's last handle is closed (spec.md §4.7 "Close").
func WithInvalidationClose() Option {
	return func(n *internal.ReactiveNode) {
		internal.SetInvalidation(n, internal.InvalidationClose)
	}
}

// WithInvalidationLastValue freezes the node at its last computed value
// instead of closing it once its last handle is closed, falling back to
// Close if the freeze itself fails (spec.md §4.7 "LastValue").
func WithInvalidationLastValue() Option {
	return func(n *internal.ReactiveNode) {
		internal.SetInvalidation(n, internal.InvalidationLastValue)
	}
}

func applyOptions(n *internal.ReactiveNode, opts []Option) {
	for _, opt := range opts {
		opt(n)
	}
}

// SetLogger overrides the package-wide structured logger used to report
// recompute failures and Calc/NewAction construction failures (spec.md's ambient logging
// concern). The zero value (nil) is ignored.
func SetLogger(l *slog.Logger) {
	internal.SetLogger(l)
}
