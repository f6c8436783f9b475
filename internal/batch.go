package internal

// batchContext is one in-flight batch. It is built in two phases,
// matching original_source/include/reaction/graph/batch.h's Batch: a
// construction phase that runs the user closure once, recording every
// source write and the transitive observer set reached from it, and a
// commit phase that visits the collected set exactly once in
// non-decreasing depth order. Unlike the C++ original the closure is
// not invoked a second time at commit — writes already landed on their
// cells during construction (spec.md §9 "in-batch reads see the
// pending value"); commit only fires the deferred notifications.
type batchContext struct {
	graph *Graph

	depth int // nesting depth on the owning goroutine; >1 means nested

	touched   map[*ReactiveNode]struct{} // sources written inside this batch
	collected map[*ReactiveNode]struct{} // transitive observer set of touched

	registered bool // RegisterActiveBatch has been called
}

func newBatchContext(g *Graph) *batchContext {
	return &batchContext{
		graph:     g,
		depth:     1,
		touched:   make(map[*ReactiveNode]struct{}),
		collected: make(map[*ReactiveNode]struct{}),
	}
}

// beginBatch installs a batch context as current for this goroutine, or
// increments the nesting depth of the one already active (nested
// reactor.Batch calls join their enclosing batch, mirroring the
// teacher's internal/batcher.go depth counter).
func beginBatch(g *Graph) *batchContext {
	s := currentState()
	if s.batch != nil {
		s.batch.depth++
		return s.batch
	}
	ctx := newBatchContext(g)
	s.batch = ctx
	return ctx
}

// endBatch decrements the nesting depth and reports whether ctx is now
// fully unwound (i.e. this call matched the outermost Batch/BatchExecute
// invocation), in which case the caller owns registering and committing
// or dropping it.
func endBatch(ctx *batchContext) bool {
	ctx.depth--
	if ctx.depth > 0 {
		return false
	}
	currentState().batch = nil
	return true
}

// CurrentBatch returns the batch active on the calling goroutine, or nil.
func CurrentBatch() *batchContext {
	return currentState().batch
}

// RecordWrite is called by Variable.Write when a batch is active: it
// remembers the touched source and folds its transitive observer set
// into the batch's pending commit set (spec.md §4.5 steps 1-3).
func (b *batchContext) RecordWrite(node *ReactiveNode) {
	b.touched[node] = struct{}{}
	b.graph.CollectObservers(node, b.collected, node.Depth()+1)
}

func (b *batchContext) allNodes() []*ReactiveNode {
	out := make([]*ReactiveNode, 0, len(b.touched)+len(b.collected))
	for n := range b.touched {
		out = append(out, n)
	}
	for n := range b.collected {
		out = append(out, n)
	}
	return out
}

// register protects every node this batch touched against concurrent
// Reset (I6), per spec.md §4.5 step 4. Close is not blocked by it.
func (b *batchContext) register() {
	if b.registered {
		return
	}
	b.registered = true
	b.graph.RegisterActiveBatch(b, b.allNodes())
}

func (b *batchContext) unregister() {
	if !b.registered {
		return
	}
	b.graph.UnregisterActiveBatch(b, b.allNodes())
	b.registered = false
}

// commit drains the collected set in non-decreasing depth order, firing
// each node's trigger-policy check and recompute exactly once (spec.md
// §4.5 step 6, §5 batch ordering guarantee), threading each node's own
// actual change result to its dependents the same way propagate does
// for a single write (spec.md §4.2). Errors from individual nodes are
// joined and returned; a failing node does not stop its siblings from
// being visited (best-effort, spec.md §4.10).
func (b *batchContext) commit() error {
	roots := make([]*ReactiveNode, 0, len(b.touched))
	for n := range b.touched {
		roots = append(roots, n)
	}
	return drainPropagation(roots, b.collected)
}

// BatchHandle is the internal counterpart of the public Batch object:
// constructed once, may be executed or dropped exactly once.
type BatchHandle struct {
	ctx      *batchContext
	executed bool
	dropped  bool
}

// NewBatch runs fn with batching installed, returning a handle the
// caller must Execute or Close. Returns nil if fn ran inside an already
// active (outer) batch — that outer batch owns the eventual commit.
func NewBatch(g *Graph, fn func()) *BatchHandle {
	ctx := beginBatch(g)
	fn()
	if !endBatch(ctx) {
		return nil
	}
	ctx.register()
	return &BatchHandle{ctx: ctx}
}

// Execute fires the deferred notifications once, in depth order.
func (h *BatchHandle) Execute() error {
	if h == nil || h.executed || h.dropped {
		return nil
	}
	h.executed = true
	err := h.ctx.commit()
	h.ctx.unregister()
	return err
}

// Close drops the batch without ever firing notifications (the writes
// already performed during construction are not rolled back).
func (h *BatchHandle) Close() {
	if h == nil || h.executed || h.dropped {
		return
	}
	h.dropped = true
	h.ctx.unregister()
}

// BatchExecute runs fn inside a batch and immediately commits it.
func BatchExecute(g *Graph, fn func()) error {
	h := NewBatch(g, fn)
	if h == nil {
		return nil
	}
	return h.Execute()
}
