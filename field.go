package reactor

import (
	"sync/atomic"

	"github.com/kestrel-dev/reactor/internal"
)

var defaultFieldIndex = internal.NewFieldIndex(internal.DefaultGraph())

var fieldOwnerIDCounter atomic.Uint64

// FieldOwner aggregates a set of reactive fields under one object
// identity, then wires all of them as dependencies of a container node
// in one call (spec.md §3/§4.4 "Field Index") — the reactive-struct
// pattern, where a container's own node should recompute whenever any
// of its inner reactive fields changes.
type FieldOwner struct {
	id internal.ObjectID
}

// NewFieldOwner allocates a fresh object identity to group fields under.
func NewFieldOwner() *FieldOwner {
	return &FieldOwner{id: fieldOwnerIDCounter.Add(1)}
}

// AddField registers h as one of this owner's reactive fields. Returns
// the receiver so calls can be chained.
func (o *FieldOwner) AddField(h ref) *FieldOwner {
	if n := h.node(); n != nil {
		defaultFieldIndex.AddField(o.id, n)
	}
	return o
}

// Bind wires every field registered on this owner as a dependency of
// container, through the normal graph edge API (so cycle checks still
// apply). This is the one documented lock-order exception: the field
// index's own lock is released before the graph lock is taken (spec.md
// §4.4, §5).
func (o *FieldOwner) Bind(container ref) error {
	n := container.node()
	if n == nil {
		return internal.NewError(internal.KindInvalidState, "Bind called with a closed container handle")
	}
	return defaultFieldIndex.Bind(o.id, n)
}

// Close drops this owner's field registration (it does not close the
// field handles themselves).
func (o *FieldOwner) Close() {
	defaultFieldIndex.RemoveObject(o.id)
}
