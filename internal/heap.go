package internal

// depthHeap is a bucket queue keyed by node depth: draining it visits
// every inserted node exactly once, in non-decreasing depth order, ties
// broken by insertion order within a bucket (spec.md §5 "Inside a
// batch: every collected node is visited exactly once in non-decreasing
// depth order; ties broken by insertion order into the multiset").
//
// Adapted from the teacher's internal/heap.go PriorityHeap, which used
// the same bucket-of-rings structure keyed by node height to drain a
// runtime's dirty set; generalized here from *Computed to *ReactiveNode
// and grown on demand instead of a fixed 2000-bucket array.
type depthHeap struct {
	min, max int

	buckets []*heapEntry // index by depth

	lookup map[*ReactiveNode]*heapEntry
}

type heapEntry struct {
	node *ReactiveNode
	next *heapEntry
	prev *heapEntry
}

func newDepthHeap() *depthHeap {
	return &depthHeap{
		buckets: make([]*heapEntry, 64),
		lookup:  make(map[*ReactiveNode]*heapEntry),
	}
}

func (h *depthHeap) ensureCapacity(depth int) {
	if depth < len(h.buckets) {
		return
	}
	grown := make([]*heapEntry, depth+1)
	copy(grown, h.buckets)
	h.buckets = grown
}

// Insert adds node to the heap, deduplicating via FlagInHeap so a node
// touched multiple times in one batch is only visited once.
func (h *depthHeap) Insert(node *ReactiveNode) {
	if node.HasFlag(FlagInHeap) {
		return
	}
	node.AddFlag(FlagInHeap)

	depth := int(node.Depth())
	h.ensureCapacity(depth)

	entry := &heapEntry{node: node}
	h.lookup[node] = entry

	if h.buckets[depth] == nil {
		h.buckets[depth] = entry
		entry.prev = entry
		entry.next = nil
	} else {
		head := h.buckets[depth]
		tail := head.prev
		tail.next = entry
		entry.prev = tail
		entry.next = nil
		head.prev = entry
	}

	if depth > h.max {
		h.max = depth
	}
}

func (h *depthHeap) remove(node *ReactiveNode) {
	if !node.HasFlag(FlagInHeap) {
		return
	}
	node.RemoveFlag(FlagInHeap)

	entry, ok := h.lookup[node]
	if !ok {
		return
	}
	delete(h.lookup, node)

	depth := int(node.Depth())

	if entry.prev == entry {
		h.buckets[depth] = nil
		entry.prev = entry
		entry.next = nil
		return
	}

	head := h.buckets[depth]
	if entry == head {
		h.buckets[depth] = entry.next
	} else {
		entry.prev.next = entry.next
	}

	next := entry.next
	if next == nil {
		next = h.buckets[depth]
	}
	if next != nil {
		next.prev = entry.prev
	}

	entry.prev = entry
	entry.next = nil
}

// Drain visits every queued node exactly once in non-decreasing depth
// order, leaving the heap empty. process may itself insert new nodes
// (e.g. a computed enqueuing its own observers after recomputing) —
// those are visited within the same drain if their depth is >= h.min.
func (h *depthHeap) Drain(process func(*ReactiveNode)) {
	for h.min = 0; h.min <= h.max; h.min++ {
		if h.min >= len(h.buckets) {
			continue
		}
		for h.buckets[h.min] != nil {
			entry := h.buckets[h.min]
			h.remove(entry.node)
			process(entry.node)
		}
	}
	h.max = 0
	h.min = 0
}

func (h *depthHeap) Len() int {
	return len(h.lookup)
}
