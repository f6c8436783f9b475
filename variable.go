package reactor

import "github.com/kestrel-dev/reactor/internal"

// Var constructs a source node seeded with initial (spec.md §4.1/§4.2
// "Variable"). Variables are the only node kind that accepts external
// writes; every Computed and Action downstream of one recomputes
// according to its own trigger policy when the variable changes.
func Var[T any](initial T, opts ...Option) *Handle[T] {
	g := internal.DefaultGraph()
	n := internal.NewVariable(g, initial)
	applyOptions(n, opts)
	return wrap[T](internal.NewHandle(g, n))
}

// Set writes a new value to the variable. Outside a batch this
// propagates to observers immediately; inside a batch the write lands
// right away but notification is deferred to the batch's commit
// (spec.md §4.5, §9).
func (x *Handle[T]) Set(v T) error {
	n := x.node()
	if n == nil {
		return internal.NewError(internal.KindInvalidState, "Set called on a closed handle")
	}
	return internal.Write(internal.DefaultGraph(), n, v)
}

// Update applies fn to the variable's current value in place, the
// Go-idiomatic stand-in for spec.md's raw_ptr()-based compound
// assignment (§4.1).
func (x *Handle[T]) Update(fn func(old T) T) error {
	n := x.node()
	if n == nil {
		return internal.NewError(internal.KindInvalidState, "Update called on a closed handle")
	}
	return internal.Mutate(internal.DefaultGraph(), n, func(old any) any {
		return fn(as[T](old))
	})
}

// Const builds a Variable seeded once whose Set/Update always fail with
// ErrInvalidState — a real node like any other Variable (others may
// read and depend on it), just one the graph itself enforces as
// immutable rather than merely by caller convention (spec.md §6
// "immutable variable handle").
func Const[T any](value T, opts ...Option) *Handle[T] {
	g := internal.DefaultGraph()
	n := internal.NewConstVariable(g, value)
	applyOptions(n, opts)
	return wrap[T](internal.NewHandle(g, n))
}
