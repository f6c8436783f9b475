package internal

import (
	"fmt"
	"sort"

	"github.com/m1gwings/treedrawer/tree"
)

// DumpTree renders node and its dependency subtree as an ASCII tree for
// diagnostics, grounded on pumped-fn-pumped-go's
// extensions/graph_debug.go buildTree/tryFormatHorizontalTree, which
// builds the same kind of treedrawer.Tree from a resolved dependency
// map. Here the traversal walks ReactiveNode.Deps() directly instead of
// a scope-exported adjacency map, since the graph already owns that
// structure.
func DumpTree(g *Graph, root *ReactiveNode) string {
	if root == nil {
		return "(nil node)"
	}
	t := buildDebugTree(g, root, make(map[*ReactiveNode]bool))
	if t == nil {
		return "(empty)"
	}
	return t.String()
}

func buildDebugTree(g *Graph, node *ReactiveNode, visited map[*ReactiveNode]bool) *tree.Tree {
	if visited[node] {
		return tree.NewTree(tree.NodeString(fmt.Sprintf("%s (cycle)", debugLabel(g, node))))
	}
	visited[node] = true

	t := tree.NewTree(tree.NodeString(debugLabel(g, node)))

	deps := make([]*ReactiveNode, 0, 4)
	for d := range node.Deps() {
		deps = append(deps, d)
	}
	sort.Slice(deps, func(i, j int) bool { return deps[i].id < deps[j].id })

	for _, d := range deps {
		child := buildDebugTree(g, d, visited)
		if child != nil {
			addChild(t, child)
		}
	}
	return t
}

func addChild(parent *tree.Tree, child *tree.Tree) {
	newChild := parent.AddChild(child.Val())
	for _, grandchild := range child.Children() {
		addChild(newChild, grandchild)
	}
}

func debugLabel(g *Graph, node *ReactiveNode) string {
	name := g.GetName(node)
	if name == "" {
		name = fmt.Sprintf("node#%d", node.id)
	}
	value, err := node.cell.Get()
	switch {
	case err != nil:
		return fmt.Sprintf("%s [%s] <uninitialized>", name, node.kind.String())
	default:
		return fmt.Sprintf("%s [%s] = %v", name, node.kind.String(), value)
	}
}
