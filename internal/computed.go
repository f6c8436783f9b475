package internal

import "errors"

// ComputeFn is the user-supplied recomputation closure. It receives the
// node itself so field-index–bound containers can look up co-located
// state if needed; most callers ignore the argument.
type ComputeFn func(*ReactiveNode) (any, error)

// NewComputed constructs a Computed node with compute as its
// recomputation closure and deps as its initial dependency set (spec.md
// §4.2). The initial value is produced by running compute once with the
// new node installed as the current computation, so reads made inside
// compute via ReadNode (which calls Track) become auto-tracked
// dependencies in addition to deps.
func NewComputed(g *Graph, compute ComputeFn, deps ...*ReactiveNode) (*ReactiveNode, error) {
	n := newReactiveNode(KindComputed)
	n.compute = compute
	n.trigger = TriggerOnChange
	g.AddNode(n)

	for _, d := range deps {
		if d == nil {
			return nil, NewError(KindNullPointer, "computed: dependency handle has expired")
		}
		if err := g.AddEdge(n, d); err != nil {
			g.CloseNode(n)
			return nil, err
		}
	}

	value, err := runComputeTracked(n)
	if err != nil {
		g.CloseNode(n)
		return nil, err
	}
	n.cell.Update(value)
	return n, nil
}

// NewAction constructs an Action node: same recomputation machinery as
// Computed but its cell holds no user-meaningful value, only a
// placeholder used for ordering (spec.md §4.2 "Action").
func NewAction(g *Graph, effect ComputeFn, deps ...*ReactiveNode) (*ReactiveNode, error) {
	n := newReactiveNode(KindAction)
	n.compute = effect
	n.trigger = TriggerOnChange
	g.AddNode(n)

	for _, d := range deps {
		if d == nil {
			return nil, NewError(KindNullPointer, "action: dependency handle has expired")
		}
		if err := g.AddEdge(n, d); err != nil {
			g.CloseNode(n)
			return nil, err
		}
	}

	if _, err := runComputeTracked(n); err != nil {
		g.CloseNode(n)
		return nil, err
	}
	return n, nil
}

// runCompute executes node's compute closure with panic recovery,
// converting a panic into a regular error rather than letting it
// unwind through graph internals (spec.md §4.10).
func runCompute(node *ReactiveNode) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewError(KindUnknown, "recompute panic on node %d: %v", node.id, r)
		}
	}()
	return node.compute(node)
}

// processNotify is the single entry point for "node received an
// upstream change signal": it consults the trigger policy and, on a
// fire decision, recomputes. It never recurses into node's own
// observers — every caller (drainPropagation below) has already
// gathered the full transitive observer set up front and drains it in
// non-decreasing depth order, which is what gives diamond dependencies
// their at-most-once recomputation guarantee (spec.md §5, §8
// "Diamond"): recomputing eagerly per edge would revisit a convergence
// node like D once per incoming edge instead of once overall.
//
// It reports whether node's own value actually changed, so the caller
// can forward that (rather than a blanket true) as the upstreamChanged
// flag for node's own observers — spec.md §4.2: a computed "forwards a
// notify(new_changed_flag) ... may be false (e.g., equality said
// same)". A suppressed or failed recompute reports changed=false: its
// observers see no change at all, on-change ones among them stay quiet.
func processNotify(node *ReactiveNode, upstreamChanged bool) (changed bool, err error) {
	if node.Kind() == KindVariable || node.compute == nil {
		return false, nil
	}
	if !shouldFire(node, upstreamChanged) {
		return false, nil
	}

	node.AddFlag(FlagRecomputing)
	value, err := runComputeTracked(node)
	node.RemoveFlag(FlagRecomputing)
	if err != nil {
		Log().Warn("recompute failed, observers not notified", "node", node.id, "err", err)
		return false, err
	}

	return node.cell.Update(value), nil
}

// runComputeTracked installs node as the current computation for the
// duration of the recompute so that a Computed built with the
// auto-tracking style (reading its dependencies via Read inside the
// closure) keeps its dependency edges current. It first drops node's
// previously auto-tracked dependency edges (clearAutoDeps), mirroring
// the teacher's Computed.run, which disposes and rebuilds its whole
// dependency set on every re-run
// (_examples/AnatoleLucet-sig/internal/computed.go:41-49): without
// this, a closure reading more than one dependency re-links every one
// of them on every recompute without ever unlinking the previous round,
// growing the dep/sub lists without bound, and a dependency only read
// on some passes is never forgotten once it goes stale.
func runComputeTracked(node *ReactiveNode) (value any, err error) {
	node.clearAutoDeps()
	RunWithComputation(node, func() {
		value, err = runCompute(node)
	})
	return value, err
}

// drainPropagation visits every node in collected exactly once, in
// non-decreasing depth order, threading each node's own actual change
// result to the nodes that depend on it: a node is only reported as
// "upstream changed" to processNotify if at least one of its own
// dependencies is a root of this propagation or itself actually
// changed, not merely because some other, unrelated ancestor changed
// (spec.md §4.2, §5). roots are nodes already known to have changed —
// the Variable(s) just written, or (from Reset) the node whose compute
// closure or dependency set was just replaced.
func drainPropagation(roots []*ReactiveNode, collected map[*ReactiveNode]struct{}) error {
	changed := make(map[*ReactiveNode]bool, len(roots)+len(collected))
	for _, r := range roots {
		changed[r] = true
	}

	heap := newDepthHeap()
	for n := range collected {
		heap.Insert(n)
	}

	var errs []error
	heap.Drain(func(n *ReactiveNode) {
		upstreamChanged := false
		for dep := range n.Deps() {
			if changed[dep] {
				upstreamChanged = true
				break
			}
		}

		didChange, err := processNotify(n, upstreamChanged)
		if err != nil {
			errs = append(errs, err)
		}
		changed[n] = didChange
	})
	return errors.Join(errs...)
}

// propagate is the single-write counterpart of batchContext.commit: it
// gathers node's full transitive observer set and drains it once in
// non-decreasing depth order, so a lone (non-batched) Write gets the
// same at-most-once guarantee a batch does (spec.md §4.5, §5, §8
// "Diamond"). An explicit reactor.Batch is only needed to group writes
// to more than one source into a single commit; a single write is
// already, in effect, a one-source batch. Also used by Reset to notify
// node's own downstream observers after a successful reset.
func propagate(g *Graph, node *ReactiveNode) error {
	collected := make(map[*ReactiveNode]struct{})
	g.CollectObservers(node, collected, node.Depth()+1)
	return drainPropagation([]*ReactiveNode{node}, collected)
}

// ReadNode returns node's current value, tracking it as a dependency of
// whatever computation is currently executing — the common read path
// for Variable, Computed and Action alike.
func ReadNode(node *ReactiveNode) (any, error) {
	Track(node)
	return node.cell.Get()
}

// Reset atomically replaces node's compute closure and dependency set,
// rolling back completely if any new dependency is nil, self-observing
// or would introduce a cycle (spec.md §4.2 "Reset", §4.3). A node
// enrolled in an active batch rejects Reset with
// ErrBatchOperationConflict (I6).
func Reset(g *Graph, node *ReactiveNode, compute ComputeFn, deps ...*ReactiveNode) error {
	if node.Kind() == KindVariable {
		return NewError(KindInvalidState, "Reset called on a Variable (sources have no recompute closure)")
	}
	if g.IsNodeInActiveBatch(node) {
		return NewError(KindBatchOperationConflict, "node %d cannot be reset while enrolled in an active batch", node.id)
	}

	rollback := g.SaveStateForRollback(node)
	prevCompute := node.compute

	if err := g.UpdateObserversTransactional(node, deps...); err != nil {
		return err
	}

	node.compute = compute
	value, err := runComputeTracked(node)
	if err != nil {
		node.compute = prevCompute
		rollback()
		return err
	}
	node.cell.Update(value)

	// Reset's public contract fires one notify(true) to downstream
	// observers on success regardless of whether the new value happens
	// to equal the old one (spec.md §4.2 "Public contract of reset",
	// Reset algorithm step 6) — propagate seeds node itself as a changed
	// root rather than relying on cell.Update's own comparison.
	return propagate(g, node)
}
