package internal

import "sync"

// ObjectID identifies a field-owning object (spec.md §3 "Field Index").
type ObjectID = uint64

// FieldIndex is the auxiliary map object-id -> node set used when a
// reactive container wraps inner reactive fields, so the container's
// node becomes an observer (downstream) of all of its fields' nodes once
// bound. Grounded
// on original_source/include/reaction/graph/field_graph.h's FieldGraph.
type FieldIndex struct {
	mu    sync.Mutex
	graph *Graph
	nodes map[ObjectID]map[*ReactiveNode]struct{}
}

func NewFieldIndex(graph *Graph) *FieldIndex {
	return &FieldIndex{
		graph: graph,
		nodes: make(map[ObjectID]map[*ReactiveNode]struct{}),
	}
}

// AddField registers node as a field of the object identified by id.
func (f *FieldIndex) AddField(id ObjectID, node *ReactiveNode) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.nodes[id] == nil {
		f.nodes[id] = make(map[*ReactiveNode]struct{})
	}
	f.nodes[id][node] = struct{}{}
}

// RemoveObject drops every field registered under id, e.g. when the
// container wrapping it is disposed.
func (f *FieldIndex) RemoveObject(id ObjectID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.nodes, id)
}

// Bind wires every field registered under id as a dependency of
// container, adding edges through the normal graph API (so cycle checks
// apply). The field-index lock is released before calling into the
// graph, which is the one documented exception to "graph lock before
// node lock" (spec.md §4.4, §5): Field Index -> release -> Graph.
func (f *FieldIndex) Bind(id ObjectID, container *ReactiveNode) error {
	f.mu.Lock()
	set, ok := f.nodes[id]
	if !ok {
		f.mu.Unlock()
		return nil
	}
	snapshot := make([]*ReactiveNode, 0, len(set))
	for n := range set {
		snapshot = append(snapshot, n)
	}
	f.mu.Unlock()

	for _, n := range snapshot {
		if err := f.graph.AddEdge(container, n); err != nil {
			return err
		}
	}
	return nil
}
