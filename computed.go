package reactor

import "github.com/kestrel-dev/reactor/internal"

// Calc constructs a Computed node: a pure function of other nodes,
// recomputed according to its trigger policy whenever an upstream
// dependency changes (spec.md §4.2 "Computed"). Dependencies are
// tracked automatically: calling Get on another Handle from inside fn
// registers that node as a dependency, the same auto-tracking style the
// teacher's sig.NewComputed uses.
func Calc[T any](fn func() T, opts ...Option) *Handle[T] {
	g := internal.DefaultGraph()
	n, err := internal.NewComputed(g, func(*internal.ReactiveNode) (any, error) {
		return computeValue(fn)
	})
	if err != nil {
		// construction-time failure (the initial run of fn returned an
		// error or panicked); return a handle to a plain Variable holding
		// T's zero value rather than a nil one so callers can still
		// safely call methods on it.
		internal.Log().Warn("Calc construction failed", "err", err)
		n = internal.NewVariable(g, *new(T))
	}
	applyOptions(n, opts)
	return wrap[T](internal.NewHandle(g, n))
}

// computeValue runs fn with panic-to-error conversion, so a panicking
// user closure becomes a regular recompute failure (spec.md §4.10)
// instead of unwinding through the graph.
func computeValue[T any](fn func() T) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = internal.NewError(internal.KindUnknown, "Calc closure panicked: %v", r)
		}
	}()
	return fn(), nil
}

// Reset atomically replaces the Computed's closure and dependency set,
// declared explicitly via deps; reads made inside fn while it runs are
// still auto-tracked as additional dependencies (spec.md §4.2 "Reset"). Any failure (nil dependency,
// self-observation, cycle, or the node being enrolled in an active
// batch) rolls back to the prior closure and dependency set untouched.
func (x *Handle[T]) Reset(fn func() T, deps ...ref) error {
	n := x.node()
	if n == nil {
		return internal.NewError(internal.KindInvalidState, "Reset called on a closed handle")
	}
	nodes := make([]*internal.ReactiveNode, 0, len(deps))
	for _, d := range deps {
		nodes = append(nodes, d.node())
	}
	return internal.Reset(internal.DefaultGraph(), n, func(*internal.ReactiveNode) (any, error) {
		return computeValue(fn)
	}, nodes...)
}
