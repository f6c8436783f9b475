package internal

import (
	"iter"
	"sync/atomic"
)

// NodeKind distinguishes the three reactive node flavors sharing this
// common base (spec.md §4.2): a source has no recompute closure, a
// computed has one and a typed cell, an action has one and a unit-typed
// cell used only for ordering observers, never read by user code.
type NodeKind int

const (
	KindVariable NodeKind = iota
	KindComputed
	KindAction
)

func (k NodeKind) String() string {
	switch k {
	case KindVariable:
		return "Variable"
	case KindComputed:
		return "Computed"
	case KindAction:
		return "Action"
	default:
		return "Unknown"
	}
}

// NodeFlags are cheap, non-atomic bitset markers; they are set and
// cleared during propagation without holding the graph lock.
type NodeFlags int32

const (
	FlagNone NodeFlags = 0
	// FlagInHeap marks a node currently queued in a batch's depth heap,
	// adapted from the teacher's PriorityHeap dedup flag (internal/heap.go).
	FlagInHeap NodeFlags = 1 << iota
	// FlagRecomputing is set on a node while processNotify recomputes it.
	// The re-entrant write rejection (SPEC_FULL.md §9.2) does not read
	// this flag; Write/Mutate check InRecompute instead.
	FlagRecomputing
)

// TriggerPolicy decides whether an incoming change causes recomputation
// (spec.md §4.6).
type TriggerPolicy int

const (
	TriggerOnChange TriggerPolicy = iota // default
	TriggerAlways
	TriggerFilter
)

// InvalidationPolicy decides what happens when a node's external
// reference count drops to zero (spec.md §4.7).
type InvalidationPolicy int

const (
	InvalidationKeep InvalidationPolicy = iota // default
	InvalidationClose
	InvalidationLastValue
)

// ReactiveNode is the common graph vertex: identity, depth, the
// dependency/observer doubly-linked edge lists, batch/ref counters and
// policy tags (spec.md §3 "Node"). Variable, Computed and Action are not
// separate types: each is a *ReactiveNode with the matching NodeKind,
// built by NewVariable, NewComputed or NewAction.
type ReactiveNode struct {
	id   uint64
	kind NodeKind

	cell *ValueCell // present for Variable/Computed; present-but-unit for Action

	// compute recomputes the node's value; nil for sources. Errors from a
	// panic inside the closure are converted here rather than allowed to
	// escape — spec.md §4.10.
	compute func(*ReactiveNode) (any, error)

	trigger  TriggerPolicy
	filterFn func() bool

	invalidation InvalidationPolicy

	depth int32 // longest observed downstream chain length, spec.md §3 "Depth"

	flags NodeFlags

	batchCount int32 // atomic; I6
	refCount   int32 // atomic; I5

	// immutable marks a Const variable (spec.md §6 "immutable variable
	// handle"): Write/Mutate reject any call against it.
	immutable bool

	depsHead *DependencyLink
	subsHead *DependencyLink

	// deps records the ordered dependency list installed by the last
	// UpdateObserversTransactional (or restored by its rollback). Nothing
	// reads it back: rollback re-derives the prior set from the linked
	// list.
	deps []*ReactiveNode

	name string
}

// DependencyLink represents one directed edge, observer -> dependency,
// stored on both sides at once so either endpoint can enumerate its
// neighbors in O(1) amortized (spec.md §3 "Edge"). Lifted near-verbatim
// from the teacher's internal/node.go ring-buffer linked list, which was
// already generic over *ReactiveNode.
type DependencyLink struct {
	dep *ReactiveNode
	sub *ReactiveNode

	// auto marks a link established by Track (auto-tracking a read inside
	// a recompute closure) rather than by explicit construction/Reset
	// deps or a FieldOwner.Bind. clearAutoDeps drops only these before a
	// closure re-runs; static links survive untouched.
	auto bool

	prevDep *DependencyLink
	nextDep *DependencyLink

	prevSub *DependencyLink
	nextSub *DependencyLink
}

func newReactiveNode(kind NodeKind) *ReactiveNode {
	return &ReactiveNode{
		id:   nextNodeID(),
		kind: kind,
		cell: newValueCell(),
	}
}

var nodeIDCounter atomic.Uint64

func nextNodeID() uint64 {
	return nodeIDCounter.Add(1)
}

func (n *ReactiveNode) ID() uint64     { return n.id }
func (n *ReactiveNode) Kind() NodeKind { return n.kind }

func (n *ReactiveNode) Depth() int32 { return atomic.LoadInt32(&n.depth) }

func (n *ReactiveNode) updateDepth(d int32) {
	for {
		cur := atomic.LoadInt32(&n.depth)
		if d <= cur {
			return
		}
		if atomic.CompareAndSwapInt32(&n.depth, cur, d) {
			return
		}
	}
}

func (n *ReactiveNode) HasFlag(f NodeFlags) bool { return n.flags&f != 0 }
func (n *ReactiveNode) AddFlag(f NodeFlags)      { n.flags |= f }
func (n *ReactiveNode) RemoveFlag(f NodeFlags)   { n.flags &^= f }

func (n *ReactiveNode) BatchCount() int32 { return atomic.LoadInt32(&n.batchCount) }
func (n *ReactiveNode) incBatchCount()    { atomic.AddInt32(&n.batchCount, 1) }
func (n *ReactiveNode) decBatchCount()    { atomic.AddInt32(&n.batchCount, -1) }

func (n *ReactiveNode) RefCount() int32    { return atomic.LoadInt32(&n.refCount) }
func (n *ReactiveNode) incRefCount() int32 { return atomic.AddInt32(&n.refCount, 1) }
func (n *ReactiveNode) decRefCount() int32 { return atomic.AddInt32(&n.refCount, -1) }

// link creates a bidirectional dependency link between sub (observer)
// and dep (dependency), deduplicating on the most-recently-added
// dependency the way the teacher's ReactiveNode.Link does, and bumps
// sub's depth when dep is itself computed (has a recompute closure).
// auto marks the link as established by auto-tracking, see
// DependencyLink.auto.
func link(sub, dep *ReactiveNode, auto bool) {
	if sub.depsHead != nil {
		tail := sub.depsHead.prevDep
		if tail.dep == dep {
			return
		}
	}

	l := &DependencyLink{dep: dep, sub: sub, auto: auto}
	sub.addDepLink(l)
	dep.addSubLink(l)

	if dep.compute != nil && dep.Depth() >= sub.Depth() {
		sub.updateDepth(dep.Depth() + 1)
	}
}

func (n *ReactiveNode) addDepLink(l *DependencyLink) {
	if n.depsHead == nil {
		n.depsHead = l
		l.prevDep = l
		l.nextDep = nil
	} else {
		tail := n.depsHead.prevDep
		tail.nextDep = l
		l.prevDep = tail
		l.nextDep = nil
		n.depsHead.prevDep = l
	}
}

func (n *ReactiveNode) addSubLink(l *DependencyLink) {
	if n.subsHead == nil {
		n.subsHead = l
		l.prevSub = l
		l.nextSub = nil
	} else {
		tail := n.subsHead.prevSub
		tail.nextSub = l
		l.prevSub = tail
		l.nextSub = nil
		n.subsHead.prevSub = l
	}
}

func (n *ReactiveNode) removeSubLink(l *DependencyLink) {
	if l.prevSub == l {
		n.subsHead = nil
		l.prevSub = nil
		l.nextSub = nil
		return
	}

	if l == n.subsHead {
		n.subsHead = l.nextSub
	} else {
		l.prevSub.nextSub = l.nextSub
	}

	if l.nextSub != nil {
		l.nextSub.prevSub = l.prevSub
	} else {
		n.subsHead.prevSub = l.prevSub
	}

	l.prevSub = nil
	l.nextSub = nil
}

func (n *ReactiveNode) removeDepLink(l *DependencyLink) {
	if l.prevDep == l {
		n.depsHead = nil
		l.prevDep = nil
		l.nextDep = nil
		return
	}

	if l == n.depsHead {
		n.depsHead = l.nextDep
	} else {
		l.prevDep.nextDep = l.nextDep
	}

	if l.nextDep != nil {
		l.nextDep.prevDep = l.prevDep
	} else {
		n.depsHead.prevDep = l.prevDep
	}

	l.prevDep = nil
	l.nextDep = nil
}

// Deps iterates the dependencies of this (observer) node.
func (n *ReactiveNode) Deps() iter.Seq[*ReactiveNode] {
	return func(yield func(*ReactiveNode) bool) {
		for l := n.depsHead; l != nil; l = l.nextDep {
			if !yield(l.dep) {
				return
			}
		}
	}
}

// Subs iterates the direct observers of this (dependency) node.
func (n *ReactiveNode) Subs() iter.Seq[*ReactiveNode] {
	return func(yield func(*ReactiveNode) bool) {
		for l := n.subsHead; l != nil; l = l.nextSub {
			if !yield(l.sub) {
				return
			}
		}
	}
}

// clearDeps removes every outgoing dependency edge of this node,
// updating both sides (I1).
func (n *ReactiveNode) clearDeps() {
	for l := n.depsHead; l != nil; {
		next := l.nextDep
		l.dep.removeSubLink(l)
		l = next
	}
	n.depsHead = nil
}

// clearAutoDeps removes only the auto-tracked dependency edges (those
// established by Track, not by explicit construction/Reset deps or a
// FieldOwner.Bind), mirroring the teacher's Computed.run, which disposes
// and rebuilds its whole dependency set on every re-run
// (_examples/AnatoleLucet-sig/internal/computed.go ClearDeps). A
// multi-dependency auto-tracked closure re-read on every recompute would
// otherwise re-add the same edges each time with nothing ever dropping
// them, and a dependency only read on some passes would never be
// forgotten once stale.
func (n *ReactiveNode) clearAutoDeps() {
	for l := n.depsHead; l != nil; {
		next := l.nextDep
		if l.auto {
			l.dep.removeSubLink(l)
			n.removeDepLink(l)
		}
		l = next
	}
}
