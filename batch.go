package reactor

import "github.com/kestrel-dev/reactor/internal"

// BatchHandle is a constructed-but-not-yet-committed batch: Variable
// writes performed inside the closure passed to Batch have already
// landed, but observers are not notified until Execute is called
// (spec.md §4.5 "Batch Context" state machine: Constructed -> Executed
// | Unregistered).
type BatchHandle struct {
	h *internal.BatchHandle
}

// Batch runs fn with writes to every Variable inside it collected into
// one pending commit, instead of notifying observers after each write.
// Nested calls to Batch join the outermost one and return nil; only the
// outermost caller's Execute or Close actually commits or drops the
// batch. A BatchHandle that is neither executed nor closed keeps its
// nodes protected.
func Batch(fn func()) *BatchHandle {
	h := internal.NewBatch(internal.DefaultGraph(), fn)
	if h == nil {
		return nil
	}
	return &BatchHandle{h: h}
}

// Execute fires the deferred notifications once, in non-decreasing
// depth order (spec.md §5 batch ordering guarantee). Safe to call at
// most meaningfully once; later calls are no-ops.
func (b *BatchHandle) Execute() error {
	if b == nil {
		return nil
	}
	return b.h.Execute()
}

// Close drops the batch without firing notifications. The writes
// already performed while constructing it are not rolled back.
func (b *BatchHandle) Close() {
	if b == nil {
		return
	}
	b.h.Close()
}

// BatchExecute runs fn inside a batch and commits it immediately,
// combining Batch and Execute into the common single-shot form (spec.md
// §6 "batch_execute").
func BatchExecute(fn func()) error {
	return internal.BatchExecute(internal.DefaultGraph(), fn)
}
