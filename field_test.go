package reactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldOwnerBind(t *testing.T) {
	width := Var(2)
	height := Var(3)

	owner := NewFieldOwner()
	owner.AddField(width).AddField(height)

	runs := 0
	area := Calc(func() int {
		runs++
		// area does not read width/height directly, so without the field
		// bind below it would never be auto-tracked as their observer.
		return 0
	})

	assert.NoError(t, owner.Bind(area))
	assert.Equal(t, 1, runs)

	assert.NoError(t, width.Set(10))
	assert.Equal(t, 2, runs) // recomputed: area is now bound as width's observer

	owner.Close()
}
