package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGraphAddEdge(t *testing.T) {
	t.Run("rejects self observation", func(t *testing.T) {
		g := NewGraph()
		n := newReactiveNode(KindComputed)
		err := g.AddEdge(n, n)
		assert.ErrorIs(t, err, ErrSelfObservation)
	})

	t.Run("rejects a cycle", func(t *testing.T) {
		g := NewGraph()
		a := newReactiveNode(KindComputed)
		b := newReactiveNode(KindComputed)
		assert.NoError(t, g.AddEdge(a, b)) // a observes b
		err := g.AddEdge(b, a)             // b observes a would close the loop
		assert.ErrorIs(t, err, ErrDependencyCycle)
	})

	t.Run("bumps the structural version", func(t *testing.T) {
		g := NewGraph()
		a := newReactiveNode(KindComputed)
		b := newReactiveNode(KindComputed)
		before := g.currentVersion()
		assert.NoError(t, g.AddEdge(a, b))
		assert.Greater(t, g.currentVersion(), before)
	})
}

func TestGraphCascadeClose(t *testing.T) {
	g := NewGraph()
	a := newReactiveNode(KindComputed)
	b := newReactiveNode(KindComputed)
	c := newReactiveNode(KindComputed)

	assert.NoError(t, g.AddEdge(b, a)) // b observes a
	assert.NoError(t, g.AddEdge(c, b)) // c observes b

	g.CloseNode(a)

	assert.False(t, g.IsRegistered(a))
	assert.False(t, g.IsRegistered(b))
	assert.False(t, g.IsRegistered(c))
}

func TestGraphCollectObservers(t *testing.T) {
	g := NewGraph()
	a := newReactiveNode(KindComputed)
	b := newReactiveNode(KindComputed)
	c := newReactiveNode(KindComputed)

	assert.NoError(t, g.AddEdge(b, a))
	assert.NoError(t, g.AddEdge(c, b))

	out := make(map[*ReactiveNode]struct{})
	g.CollectObservers(a, out, 1)

	assert.Contains(t, out, b)
	assert.Contains(t, out, c)
	assert.Len(t, out, 2)
}

func TestGraphUpdateObserversTransactionalRollback(t *testing.T) {
	g := NewGraph()
	a := newReactiveNode(KindComputed)
	b := newReactiveNode(KindComputed)
	c := newReactiveNode(KindComputed)

	assert.NoError(t, g.AddEdge(b, a)) // establish b -> a

	// attempt to reset b's deps to include c and also (invalidly) a
	// self-loop on b; the whole batch of new deps should roll back to
	// exactly {a}.
	err := g.UpdateObserversTransactional(b, c, b)
	assert.ErrorIs(t, err, ErrSelfObservation)

	got := make([]*ReactiveNode, 0)
	for d := range b.Deps() {
		got = append(got, d)
	}
	assert.Equal(t, []*ReactiveNode{a}, got)
}
