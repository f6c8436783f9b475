package reactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalc(t *testing.T) {
	t.Run("auto-tracks dependencies read inside the closure", func(t *testing.T) {
		a := Var(2)
		b := Var(3)
		sum := Calc(func() int { return a.Get() + b.Get() })

		assert.Equal(t, 5, sum.Get())
		assert.NoError(t, a.Set(10))
		assert.Equal(t, 13, sum.Get())
	})

	t.Run("chained computeds", func(t *testing.T) {
		a := Var(1)
		double := Calc(func() int { return a.Get() * 2 })
		quad := Calc(func() int { return double.Get() * 2 })

		assert.Equal(t, 4, quad.Get())
		assert.NoError(t, a.Set(5))
		assert.Equal(t, 20, quad.Get())
	})

	t.Run("a panicking closure surfaces as a recompute error, prior value retained", func(t *testing.T) {
		a := Var(1)
		c := Calc(func() int {
			if a.Get() == 0 {
				panic("boom")
			}
			return 100 / a.Get()
		})
		assert.Equal(t, 100, c.Get())

		err := a.Set(0)
		assert.Error(t, err)
		assert.Equal(t, 100, c.Get()) // unchanged: recompute failed, no update applied
	})
}

func TestReset(t *testing.T) {
	t.Run("replaces closure and dependency set atomically", func(t *testing.T) {
		a := Var(1)
		b := Var(100)
		c := Calc(func() int { return a.Get() + 1 })
		assert.Equal(t, 2, c.Get())

		assert.NoError(t, c.Reset(func() int { return b.Get() * 2 }, b))
		assert.Equal(t, 200, c.Get())

		// no longer depends on a
		assert.NoError(t, a.Set(999))
		assert.Equal(t, 200, c.Get())

		assert.NoError(t, b.Set(7))
		assert.Equal(t, 14, c.Get())
	})

	t.Run("rejects reset of a node enrolled in a pending (not yet executed) batch", func(t *testing.T) {
		a := Var(1)
		c := Calc(func() int { return a.Get() + 1 })

		h := Batch(func() {
			_ = a.Set(2) // enrolls c as a pending observer of this batch
		})

		err := c.Reset(func() int { return 0 })
		assert.ErrorIs(t, err, ErrBatchOperationConflict)

		assert.NoError(t, h.Execute())

		// protection is released once the batch commits
		assert.NoError(t, c.Reset(func() int { return 42 }))
		assert.Equal(t, 42, c.Get())
	})
}
