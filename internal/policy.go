package internal

// SetTrigger configures node's trigger policy (spec.md §4.6). Safe to
// call only before the node is shared across goroutines (construction
// time), matching how Variable/Computed option functions apply it.
func SetTrigger(node *ReactiveNode, policy TriggerPolicy) {
	node.trigger = policy
}

// SetFilter installs the predicate used when the node's trigger policy
// is TriggerFilter.
func SetFilter(node *ReactiveNode, pred func() bool) {
	node.filterFn = pred
}

// SetInvalidation configures node's invalidation policy (spec.md §4.7).
func SetInvalidation(node *ReactiveNode, policy InvalidationPolicy) {
	node.invalidation = policy
}

// shouldFire decides, per node's trigger policy, whether an incoming
// upstream change should cause recomputation (spec.md §4.6).
func shouldFire(node *ReactiveNode, upstreamChanged bool) bool {
	switch node.trigger {
	case TriggerAlways:
		return true
	case TriggerFilter:
		if node.filterFn == nil {
			return upstreamChanged
		}
		return node.filterFn()
	default: // TriggerOnChange
		return upstreamChanged
	}
}

// applyInvalidation runs node's invalidation policy once its external
// reference count has dropped to zero (spec.md §4.7).
func applyInvalidation(g *Graph, node *ReactiveNode) {
	switch node.invalidation {
	case InvalidationClose:
		g.CloseNode(node)
	case InvalidationLastValue:
		freezeNode(g, node)
	default: // InvalidationKeep
	}
}

// freezeNode drops node's outgoing dependency edges so it can no longer
// be recomputed, leaving its cell (and therefore its last value) and
// registration intact. If the freeze itself fails for any reason, fall
// back to the Close behavior rather than leave the node half-detached
// (spec.md §4.7 "falls back to Close on capture failure"). A node whose
// cell was never successfully populated has no "last value" to keep, so
// LastValue is meaningless for it — that case also falls back to Close.
func freezeNode(g *Graph, node *ReactiveNode) {
	if !node.cell.Initialized() {
		g.CloseNode(node)
		return
	}

	failed := false
	func() {
		defer func() {
			if r := recover(); r != nil {
				failed = true
			}
		}()
		g.mu.Lock()
		defer g.mu.Unlock()
		node.clearDeps()
		node.compute = nil
		g.bumpVersionLocked()
	}()
	if failed {
		g.CloseNode(node)
	}
}
