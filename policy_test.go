package reactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTriggerAlways(t *testing.T) {
	a := Var(5)
	parity := Calc(func() int { return a.Get() % 2 })
	runs := 0
	b := Calc(func() int {
		runs++
		return parity.Get()
	}, WithTriggerAlways())

	assert.Equal(t, 1, runs)
	assert.NoError(t, a.Set(7)) // parity recomputes to the same value 1, but Always still fires
	assert.Equal(t, 2, runs)
	assert.Equal(t, 1, b.Get())
}

func TestTriggerFilter(t *testing.T) {
	a := Var(0)
	runs := 0
	evenOnly := Calc(func() int {
		runs++
		return a.Get()
	}, WithTriggerFilter(func() bool { return a.Get()%2 == 0 }))

	assert.Equal(t, 1, runs)

	assert.NoError(t, a.Set(1)) // odd: predicate false, suppressed
	assert.Equal(t, 0, evenOnly.Get())
	assert.Equal(t, 1, runs)

	assert.NoError(t, a.Set(2)) // even: predicate true, fires
	assert.Equal(t, 2, evenOnly.Get())
	assert.Equal(t, 2, runs)
}
