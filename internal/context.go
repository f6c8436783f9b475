package internal

import (
	"sync"

	"github.com/petermattis/goid"
)

// goroutineState is the goroutine-local tracking/batch context. The
// teacher's internal/tracker.go kept a single mutex-guarded Tracker
// shared across goroutines, cross-checking goid.Get() against a stashed
// "executingGID" to detect cross-goroutine misuse; here each goroutine
// gets its own state keyed directly by goid, so there is nothing to
// cross-check — looking a goroutine's own state up by its own id is
// inherently race-free (spec.md §4.5, §9 "thread-local hooks").
type goroutineState struct {
	tracking bool // toggled off by RunUntracked

	// currentComputation is the node whose recompute closure is
	// currently executing on this goroutine, used for implicit
	// dependency registration (the auto-tracking Calc(fn) form).
	currentComputation *ReactiveNode

	batch *batchContext // active batch on this goroutine, nil if none
}

var goroutineStates sync.Map // goid.Get() int64 -> *goroutineState

func currentState() *goroutineState {
	gid := goid.Get()
	if s, ok := goroutineStates.Load(gid); ok {
		return s.(*goroutineState)
	}
	s := &goroutineState{tracking: true}
	goroutineStates.Store(gid, s)
	return s
}

// RunWithComputation executes fn with node installed as the current
// computation for auto-dependency tracking, restoring the previous
// value afterward even if fn panics.
func RunWithComputation(node *ReactiveNode, fn func()) {
	s := currentState()
	prev := s.currentComputation
	s.currentComputation = node
	defer func() { s.currentComputation = prev }()
	fn()
}

// RunUntracked executes fn without registering any reads as
// dependencies of the currently executing computation.
func RunUntracked(fn func()) {
	s := currentState()
	prev := s.tracking
	s.tracking = false
	defer func() { s.tracking = prev }()
	fn()
}

// Track registers dep as a dependency of the currently executing
// computation, if any and if tracking is enabled. Used by ReadNode.
func Track(dep *ReactiveNode) {
	s := currentState()
	if !s.tracking || s.currentComputation == nil {
		return
	}
	comp := s.currentComputation
	if comp == dep {
		return
	}
	// Auto-tracked edges still go through the graph's cycle check; a
	// rejected edge here simply means this read does not become a
	// tracked dependency (the caller still gets the value). Marked auto
	// so a later clearAutoDeps (before comp's next re-run) drops it.
	_ = DefaultGraph().AddAutoEdge(comp, dep)
}

// InRecompute reports whether the calling goroutine is currently
// executing some computed's recompute closure — used to reject
// re-entrant writes (SPEC_FULL.md §9.2).
func InRecompute() bool {
	return currentState().currentComputation != nil
}
