package reactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandleRefcounting(t *testing.T) {
	a := Var(10, WithInvalidationClose())
	b := Calc(func() int { return a.Get() + 1 })

	clone := a.Clone()
	assert.True(t, clone.Valid())

	a.Close() // one outstanding clone remains; node must survive
	assert.False(t, a.Closed())
	assert.Equal(t, 11, b.Get())

	clone.Close() // last reference gone now
	assert.True(t, a.Closed())
	assert.True(t, b.Closed())
}

func TestHandleClosedReadsZeroValue(t *testing.T) {
	a := Var(5, WithInvalidationClose())
	a.Close()
	assert.Equal(t, 0, a.Get())
	assert.False(t, a.Valid())
}

func TestHandleName(t *testing.T) {
	a := Var(1, WithName("counter"))
	assert.Equal(t, "counter", a.Name())

	b := Var(2)
	assert.Equal(t, "", b.Name())
}
