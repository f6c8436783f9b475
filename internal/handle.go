package internal

import "runtime"

// Handle is the internal refcounted reference to a node, the Go stand-in
// for spec.md §3's weak-pointer-based Handle: Go has no deterministic
// destructors or literal weak_ptr, so liveness here is explicit
// Clone/Close refcounting (I5) backed by a runtime.SetFinalizer safety
// net that fires Close if a Handle is ever dropped without one,
// grounded on original_source/include/reaction/core/react.h's
// addWeakRef/releaseWeakRef/handleInvalid triad.
type Handle struct {
	graph *Graph
	node  *ReactiveNode
	owns  bool // false once Close has released this handle's reference
}

// NewHandle wraps node with an initial reference count of one and
// arranges for the invalidation policy to run automatically if the
// handle is garbage collected without an explicit Close.
func NewHandle(g *Graph, node *ReactiveNode) *Handle {
	node.incRefCount()
	h := &Handle{graph: g, node: node, owns: true}
	runtime.SetFinalizer(h, func(h *Handle) {
		h.Close()
	})
	return h
}

// Clone increments node's reference count and returns a second handle to
// the same node.
func (h *Handle) Clone() *Handle {
	if h == nil || h.node == nil {
		return nil
	}
	h.node.incRefCount()
	clone := &Handle{graph: h.graph, node: h.node, owns: true}
	runtime.SetFinalizer(clone, func(c *Handle) {
		c.Close()
	})
	return clone
}

// Close decrements the reference count and, if it reaches zero, runs
// node's invalidation policy (spec.md §4.7).
func (h *Handle) Close() {
	if h == nil || !h.owns || h.node == nil {
		return
	}
	runtime.SetFinalizer(h, nil)
	h.owns = false

	node := h.node
	if node.decRefCount() > 0 {
		return
	}
	applyInvalidation(h.graph, node)
}

// Node returns the wrapped node. It keeps returning the same node after
// this handle's own reference has been released: the node itself may
// still be alive (Keep, or frozen under LastValue) even though this
// particular handle no longer owns a count against it, and a Get()
// through an already-closed handle should still see a frozen/kept value
// rather than an artificial zero. Callers that need to know whether the
// node is still a first-class graph member should check Valid/IsRegistered.
func (h *Handle) Node() *ReactiveNode {
	if h == nil {
		return nil
	}
	return h.node
}

// Valid reports whether the handle still owns a live reference.
func (h *Handle) Valid() bool {
	return h != nil && h.owns
}
