package internal

// NewVariable constructs a source node seeded with initial (spec.md
// §4.1 "Value Cell" as used by a Variable). Variables never have a
// compute closure; their cell changes only through Write.
func NewVariable(g *Graph, initial any) *ReactiveNode {
	n := newReactiveNode(KindVariable)
	n.cell.Update(initial)
	g.AddNode(n)
	return n
}

// NewConstVariable constructs a Variable that Write/Mutate always
// reject (spec.md §6 "immutable variable handle") — a real graph node
// like any other Variable, just one whose cell can never change after
// construction.
func NewConstVariable(g *Graph, initial any) *ReactiveNode {
	n := NewVariable(g, initial)
	n.immutable = true
	return n
}

// Write stores newValue on a Variable. Outside a batch a change
// propagates immediately through propagate, which visits node's whole
// transitive observer set once in non-decreasing depth order; a write
// of an equal value propagates nothing. Inside a batch the write
// lands on the cell right away but notification is deferred to the
// batch's commit (spec.md §4.5, §9 in-batch-read resolution).
//
// Re-entrant writes from inside a recompute closure are rejected: a
// computed mutating one of its own upstream sources while it is itself
// recomputing is the re-entrancy Open Question SPEC_FULL.md §9.2
// resolves against, to keep propagation order well-defined.
func Write(g *Graph, node *ReactiveNode, newValue any) error {
	if node.Kind() != KindVariable {
		return NewError(KindInvalidState, "Write called on a non-Variable node")
	}
	if node.immutable {
		return NewError(KindInvalidState, "Write called on a Const variable")
	}
	if InRecompute() {
		return NewError(KindInvalidState, "write to a Variable is not allowed while a computation is recomputing (re-entrancy)")
	}

	changed := node.cell.Update(newValue)

	if b := CurrentBatch(); b != nil {
		if changed {
			b.RecordWrite(node)
		}
		return nil
	}

	if !changed {
		return nil
	}
	return propagate(g, node)
}

// Mutate applies fn to the Variable's current value in place, the Go
// stand-in for spec.md's raw_ptr()-based compound assignment (§4.1).
func Mutate(g *Graph, node *ReactiveNode, fn func(old any) any) error {
	if node.Kind() != KindVariable {
		return NewError(KindInvalidState, "Mutate called on a non-Variable node")
	}
	if node.immutable {
		return NewError(KindInvalidState, "Mutate called on a Const variable")
	}
	if InRecompute() {
		return NewError(KindInvalidState, "mutate of a Variable is not allowed while a computation is recomputing (re-entrancy)")
	}

	changed := node.cell.Mutate(fn)

	if b := CurrentBatch(); b != nil {
		if changed {
			b.RecordWrite(node)
		}
		return nil
	}

	if !changed {
		return nil
	}
	return propagate(g, node)
}
