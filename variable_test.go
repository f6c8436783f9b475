package reactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVarSetAndUpdate(t *testing.T) {
	a := Var(1)
	assert.Equal(t, 1, a.Get())

	assert.NoError(t, a.Set(2))
	assert.Equal(t, 2, a.Get())

	assert.NoError(t, a.Update(func(old int) int { return old * 10 }))
	assert.Equal(t, 20, a.Get())
}

func TestConstRejectsWrites(t *testing.T) {
	c := Const(7)
	assert.Equal(t, 7, c.Get())

	err := c.Set(8)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, 7, c.Get())

	err = c.Update(func(old int) int { return old + 1 })
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, 7, c.Get())
}

func TestConstReadableAsADependency(t *testing.T) {
	base := Const(3)
	doubled := Calc(func() int { return base.Get() * 2 })
	assert.Equal(t, 6, doubled.Get())
}
