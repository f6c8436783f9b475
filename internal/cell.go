package internal

import (
	"reflect"
	"sync"
)

// ValueCell stores one node's current value with equality-gated change
// detection and concurrent-safe access (spec.md §4.1). Adapted from the
// teacher's internal/signal.go, which held the value directly on Signal;
// here it is split out into its own type since Variable, Computed and
// Action all need one, not just sources.
type ValueCell struct {
	mu          sync.RWMutex
	value       any
	initialized bool
}

func newValueCell() *ValueCell {
	return &ValueCell{}
}

// Get returns a copy of the stored value, or ErrResourceNotInitialized
// if nothing has been written yet.
func (c *ValueCell) Get() (any, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.initialized {
		return nil, NewError(KindResourceNotInitialized, "value read before first write")
	}
	return c.value, nil
}

// Update stores newValue and reports whether it differs from the prior
// value. The first write always reports changed=true. For comparable
// types this uses ==; for non-comparable types (slices, maps, funcs) it
// always reports changed=true, per the documented fallback in spec.md
// §9 ("Equality-gated change detection for types that don't support
// ==").
func (c *ValueCell) Update(newValue any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		c.value = newValue
		c.initialized = true
		return true
	}

	if valuesEqual(c.value, newValue) {
		return false
	}
	c.value = newValue
	return true
}

// Mutate runs fn against the current value under an exclusive lock and
// stores the result, returning whether it changed. This is the Go
// equivalent of spec.md's raw_ptr()-based compound assignment: rather
// than exposing a pointer into the cell (unsafe across the RWMutex),
// callers pass a pure transform and the cell reports the changed flag
// the same way Update does.
func (c *ValueCell) Mutate(fn func(old any) any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	var old any
	if c.initialized {
		old = c.value
	}
	newValue := fn(old)

	if !c.initialized {
		c.value = newValue
		c.initialized = true
		return true
	}
	if valuesEqual(c.value, newValue) {
		return false
	}
	c.value = newValue
	return true
}

// Invalidate clears the cell back to its uninitialized state, used when
// a node is fully closed (spec.md §4.7 "Close"): a closed node's value
// is gone, not merely stale.
func (c *ValueCell) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = nil
	c.initialized = false
}

func (c *ValueCell) Initialized() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.initialized
}

// valuesEqual implements the on-change trigger's comparison. Go panics
// if you use == on a non-comparable dynamic type stored in an any, so
// comparability is checked via reflection first; non-comparable values
// are always considered changed.
func valuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	at := reflect.TypeOf(a)
	bt := reflect.TypeOf(b)
	if at != bt || !at.Comparable() {
		return false
	}
	return a == b
}
