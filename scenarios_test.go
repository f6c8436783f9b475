package reactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestDiamond is the spec's diamond scenario: A feeds both B and C, D
// depends on both B and C. Writing A must recompute D exactly once,
// not twice, even though D has two paths back to A.
func TestDiamond(t *testing.T) {
	a := Var(1)
	b := Calc(func() int { return a.Get() + 1 })
	c := Calc(func() int { return a.Get() * 10 })

	dRuns := 0
	d := Calc(func() int {
		dRuns++
		return b.Get() + c.Get()
	})

	assert.Equal(t, 12, d.Get()) // (1+1) + (1*10)
	assert.Equal(t, 1, dRuns)

	assert.NoError(t, a.Set(2))

	assert.Equal(t, 23, d.Get()) // (2+1) + (2*10)
	assert.Equal(t, 2, dRuns)
}

// TestOnChangeSuppression: writing the same value a Variable already
// holds must not trigger recomputation downstream (default OnChange
// trigger policy).
func TestOnChangeSuppression(t *testing.T) {
	a := Var(5)
	runs := 0
	b := Calc(func() int {
		runs++
		return a.Get() * 2
	})

	assert.Equal(t, 10, b.Get())
	assert.Equal(t, 1, runs)

	assert.NoError(t, a.Set(5)) // same value
	assert.Equal(t, 10, b.Get())
	assert.Equal(t, 1, runs) // unchanged: suppressed

	assert.NoError(t, a.Set(6))
	assert.Equal(t, 12, b.Get())
	assert.Equal(t, 2, runs)
}

// TestBatchCollapse: writing two sources that both feed the same
// downstream computed, inside a batch, must recompute that downstream
// exactly once at Execute rather than once per write.
func TestBatchCollapse(t *testing.T) {
	x := Var(1)
	y := Var(2)

	runs := 0
	sum := Calc(func() int {
		runs++
		return x.Get() + y.Get()
	})
	assert.Equal(t, 3, sum.Get())
	assert.Equal(t, 1, runs)

	b := Batch(func() {
		_ = x.Set(10)
		_ = y.Set(20)
	})
	// writes already landed, but notification is deferred
	assert.Equal(t, 1, runs)

	assert.NoError(t, b.Execute())
	assert.Equal(t, 30, sum.Get())
	assert.Equal(t, 2, runs)
}

// TestCycleRejection: Reset-ing a Computed to depend on a node that
// transitively depends on it must fail and leave the prior dependency
// set and closure intact.
func TestCycleRejection(t *testing.T) {
	a := Var(1)
	b := Calc(func() int { return a.Get() + 1 })
	c := Calc(func() int { return b.Get() + 1 }) // c observes b

	err := b.Reset(func() int { return c.Get() + 1 }, c)
	assert.ErrorIs(t, err, ErrDependencyCycle)

	// b must still behave exactly as originally constructed
	assert.Equal(t, 2, b.Get())
	assert.NoError(t, a.Set(5))
	assert.Equal(t, 6, b.Get())
}

// TestLastValueInvalidation: a node built with WithInvalidationLastValue
// keeps returning its last computed value after its handle is closed,
// and no longer reacts to upstream changes.
func TestLastValueInvalidation(t *testing.T) {
	a := Var(1)
	b := Calc(func() int { return a.Get() * 100 }, WithInvalidationLastValue())

	assert.Equal(t, 100, b.Get())
	b.Close()

	assert.Equal(t, 100, b.Get()) // frozen, still readable
	assert.NoError(t, a.Set(2))
	assert.Equal(t, 100, b.Get()) // did not follow a's new value
}

// TestTransitiveSuppression: an on-change computed whose own recompute
// happens to land on the same value it already had must suppress ITS
// observers too, even though the root write further upstream did
// change — upstreamChanged is threaded per-node, not blanket-true for
// everything reachable from the write.
func TestTransitiveSuppression(t *testing.T) {
	a := Var(0)
	b := Calc(func() int {
		if a.Get() > 10 {
			return 1
		}
		return 0
	})

	cRuns := 0
	c := Calc(func() int {
		cRuns++
		return b.Get()
	})

	assert.Equal(t, 0, c.Get())
	assert.Equal(t, 1, cRuns)

	assert.NoError(t, a.Set(5)) // b recomputes but stays 0; c must not recompute
	assert.Equal(t, 0, b.Get())
	assert.Equal(t, 0, c.Get())
	assert.Equal(t, 1, cRuns)

	assert.NoError(t, a.Set(20)) // b actually changes to 1; c must recompute
	assert.Equal(t, 1, b.Get())
	assert.Equal(t, 1, c.Get())
	assert.Equal(t, 2, cRuns)
}

// TestCascadeClose: closing a node built with WithInvalidationClose
// closes every transitive observer, and exactly those.
func TestCascadeClose(t *testing.T) {
	a := Var(1, WithInvalidationClose())
	b := Calc(func() int { return a.Get() + 1 })
	c := Calc(func() int { return b.Get() + 1 })
	sibling := Var(99) // unrelated, must survive

	a.Close()

	assert.True(t, a.Closed())
	assert.True(t, b.Closed())
	assert.True(t, c.Closed())
	assert.False(t, sibling.Closed())
}
