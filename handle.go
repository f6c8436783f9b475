package reactor

import "github.com/kestrel-dev/reactor/internal"

// ref is implemented by every Handle[T] regardless of T, so dependency
// lists passed to Reset (and the handles given to Debug, AddField and
// Bind) can mix nodes of different element types the way spec.md's
// dependency sets are untyped node references.
type ref interface {
	node() *internal.ReactiveNode
}

// Handle is the typed public reference to a Variable, Computed or
// Action node (spec.md §3 "Handle"). It owns one reference count on the
// underlying node; Close releases it and, once the last handle to a
// node is gone, the node's invalidation policy runs.
type Handle[T any] struct {
	h *internal.Handle
}

func wrap[T any](h *internal.Handle) *Handle[T] {
	return &Handle[T]{h: h}
}

func (x *Handle[T]) node() *internal.ReactiveNode {
	if x == nil {
		return nil
	}
	return x.h.Node()
}

// Get returns the node's current value, tracking it as a dependency of
// whatever Calc/Action closure is currently executing on this
// goroutine. Returns the zero value if the node's value cannot be read
// (for example once the node has been closed). Closing this handle alone
// does not change what Get returns: a node kept or frozen by its
// invalidation policy still yields its value.
func (x *Handle[T]) Get() T {
	n := x.node()
	if n == nil {
		var zero T
		return zero
	}
	v, err := internal.ReadNode(n)
	if err != nil {
		var zero T
		return zero
	}
	return as[T](v)
}

// Clone returns a second handle sharing the same node, incrementing its
// reference count (I5).
func (x *Handle[T]) Clone() *Handle[T] {
	if x == nil || x.h == nil {
		return nil
	}
	return wrap[T](x.h.Clone())
}

// Close releases this handle's reference. Once the last reference to a
// node is closed, the node's invalidation policy runs (spec.md §4.7).
func (x *Handle[T]) Close() {
	if x == nil {
		return
	}
	x.h.Close()
}

// Valid reports whether this handle still holds a live reference.
func (x *Handle[T]) Valid() bool {
	return x != nil && x.h.Valid()
}

// Closed reports whether the underlying node has been removed from the
// graph, either directly or via a cascade triggered by some other
// node's Close (spec.md §4.7/§8 "closing a node closes all its
// transitive observers").
func (x *Handle[T]) Closed() bool {
	n := x.node()
	if n == nil {
		return true
	}
	return !internal.DefaultGraph().IsRegistered(n)
}

// Name returns the node's display name, or "" if none was set.
func (x *Handle[T]) Name() string {
	n := x.node()
	if n == nil {
		return ""
	}
	return internal.DefaultGraph().GetName(n)
}

// Debug renders the node and its dependency subtree as an ASCII tree.
func (x *Handle[T]) Debug() string {
	n := x.node()
	if n == nil {
		return "(closed handle)"
	}
	return internal.DumpTree(internal.DefaultGraph(), n)
}
