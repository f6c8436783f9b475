package reactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBatch(t *testing.T) {
	t.Run("nested batches join the outer one", func(t *testing.T) {
		a := Var(1)
		runs := 0
		b := Calc(func() int {
			runs++
			return a.Get() * 2
		})
		assert.Equal(t, 1, runs)

		outer := Batch(func() {
			_ = a.Set(2)
			inner := Batch(func() {
				_ = a.Set(3)
			})
			assert.Nil(t, inner) // joined the outer batch, nothing to execute separately
			assert.Equal(t, 1, runs)
		})

		assert.NoError(t, outer.Execute())
		assert.Equal(t, 6, b.Get())
		assert.Equal(t, 2, runs)
	})

	t.Run("dropping without Execute never notifies", func(t *testing.T) {
		a := Var(1)
		runs := 0
		b := Calc(func() int {
			runs++
			return a.Get() * 2
		})

		h := Batch(func() {
			_ = a.Set(99)
		})
		h.Close()

		assert.Equal(t, 1, runs) // never committed
		assert.Equal(t, 2, b.Get())
		assert.Equal(t, 99, a.Get())
	})

	t.Run("BatchExecute commits immediately", func(t *testing.T) {
		a := Var(1)
		b := Var(2)
		runs := 0
		sum := Calc(func() int {
			runs++
			return a.Get() + b.Get()
		})
		assert.Equal(t, 1, runs)

		err := BatchExecute(func() {
			_ = a.Set(10)
			_ = b.Set(20)
		})
		assert.NoError(t, err)
		assert.Equal(t, 30, sum.Get())
		assert.Equal(t, 2, runs)
	})
}
