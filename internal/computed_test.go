package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func depCount(n *ReactiveNode) int {
	count := 0
	for range n.Deps() {
		count++
	}
	return count
}

func TestRunComputeTrackedDropsStaleAutoDeps(t *testing.T) {
	g := NewGraph()
	a := NewVariable(g, 1)
	b := NewVariable(g, 2)

	sum, err := NewComputed(g, func(n *ReactiveNode) (any, error) {
		av, _ := ReadNode(a)
		bv, _ := ReadNode(b)
		return av.(int) + bv.(int), nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, depCount(sum)) // a, b

	for i := 0; i < 5; i++ {
		assert.NoError(t, Write(g, a, i+10))
	}

	// must stay at 2, never grow with repeated recomputes
	assert.Equal(t, 2, depCount(sum))
}

func TestRunComputeTrackedDropsUnreadDynamicDep(t *testing.T) {
	g := NewGraph()
	useA := NewVariable(g, true)
	a := NewVariable(g, 1)
	b := NewVariable(g, 2)

	node, err := NewComputed(g, func(n *ReactiveNode) (any, error) {
		flag, _ := ReadNode(useA)
		if flag.(bool) {
			v, _ := ReadNode(a)
			return v, nil
		}
		v, _ := ReadNode(b)
		return v, nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, depCount(node)) // useA, a

	assert.NoError(t, Write(g, useA, false))
	assert.Equal(t, 2, depCount(node)) // useA, b -- a forgotten

	stillTracked := false
	for d := range node.Deps() {
		if d == a {
			stillTracked = true
		}
	}
	assert.False(t, stillTracked)
}

func TestResetNotifiesDownstreamObservers(t *testing.T) {
	g := NewGraph()
	a := NewVariable(g, 1)
	b := NewVariable(g, 100)

	c, err := NewComputed(g, func(n *ReactiveNode) (any, error) {
		v, _ := ReadNode(a)
		return v.(int) + 1, nil
	}, a)
	assert.NoError(t, err)

	downstreamRuns := 0
	var downstreamSeen any
	_, err = NewComputed(g, func(n *ReactiveNode) (any, error) {
		downstreamRuns++
		v, _ := ReadNode(c)
		downstreamSeen = v
		return v, nil
	}, c)
	assert.NoError(t, err)
	assert.Equal(t, 1, downstreamRuns)

	assert.NoError(t, Reset(g, c, func(n *ReactiveNode) (any, error) {
		v, _ := ReadNode(b)
		return v.(int) * 2, nil
	}, b))

	assert.Equal(t, 2, downstreamRuns)
	assert.Equal(t, 200, downstreamSeen)
}
