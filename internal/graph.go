package internal

import (
	"sync"
)

// batchID identifies one in-flight batch for the purposes of I6 (a node
// enrolled in an active batch may not be reset or closed). It is the
// *batchContext pointer itself, mirroring original_source's use of the
// Batch object's own address (`const void *m_batchId`).
type batchID = *batchContext

// Graph is the process-wide dependency graph singleton (spec.md §3
// "Dependency Graph"). It owns cycle detection, cascade close,
// transactional edge updates and the two bounded caches (cycle detection
// and immediate observers), and is
// grounded on original_source/include/reaction/graph/observer_graph.h's
// ObserverGraph — translated from a mutex-guarded C++ singleton into a
// package-level Go value guarded by sync.RWMutex.
//
// Per the design note in spec.md §9 ("Cyclic references between nodes
// and graph"), the graph does not keep a second copy of each node's
// edge sets: ReactiveNode already owns its depsHead/subsHead linked
// lists (node.go). The graph instead keeps the bookkeeping that has no
// natural home on the node itself: whether a node is registered at all
// (I4), its display name, active-batch protection (I6), and the
// structural version counter caches key off (I7).
type Graph struct {
	mu sync.RWMutex

	registered map[*ReactiveNode]struct{}
	names      map[*ReactiveNode]string

	activeBatchNodes map[*ReactiveNode]map[batchID]struct{}
	activeBatchIDs   map[batchID]struct{}

	version uint64

	cycleCache    *boundedCache[nodePair, bool]
	observerCache *boundedCache[*ReactiveNode, []*ReactiveNode]
}

// Option configures a Graph at construction time.
type Option func(*Graph)

// WithCacheSize overrides the default bounded-cache capacity for both
// the cycle-detection cache and the immediate-observer cache.
func WithCacheSize(n int) Option {
	return func(g *Graph) {
		g.cycleCache = newBoundedCache[nodePair, bool](n, defaultCacheTTL)
		g.observerCache = newBoundedCache[*ReactiveNode, []*ReactiveNode](n, defaultCacheTTL)
	}
}

func NewGraph(opts ...Option) *Graph {
	g := &Graph{
		registered:       make(map[*ReactiveNode]struct{}),
		names:            make(map[*ReactiveNode]string),
		activeBatchNodes: make(map[*ReactiveNode]map[batchID]struct{}),
		activeBatchIDs:   make(map[batchID]struct{}),
		cycleCache:       newBoundedCache[nodePair, bool](defaultCacheMaxSize, defaultCacheTTL),
		observerCache:    newBoundedCache[*ReactiveNode, []*ReactiveNode](defaultCacheMaxSize, defaultCacheTTL),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// defaultGraph is the process-wide singleton returned by
// DefaultGraph(), mirroring ObserverGraph::getInstance().
var defaultGraph = NewGraph()

func DefaultGraph() *Graph { return defaultGraph }

func (g *Graph) bumpVersionLocked() {
	g.version++
	g.cycleCache.invalidateAll()
	g.observerCache.invalidateAll()
}

// AddNode registers node if not already registered (idempotent).
func (g *Graph) AddNode(node *ReactiveNode) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.addNodeLocked(node)
}

func (g *Graph) addNodeLocked(node *ReactiveNode) {
	if _, ok := g.registered[node]; ok {
		return
	}
	g.registered[node] = struct{}{}
}

// AddEdge adds an observer -> dependency edge, auto-registering either
// endpoint if needed, rejecting self-observation (I3) and cycles (I2).
// On success it bumps the structural version, invalidating every
// outstanding cache entry (I7). The resulting edge is static (see
// DependencyLink.auto) — it survives a clearAutoDeps call, which is what
// a construction-time or Reset-supplied dependency, or a
// FieldOwner.Bind, needs.
func (g *Graph) AddEdge(observer, dependency *ReactiveNode) error {
	return g.addEdge(observer, dependency, false)
}

// AddAutoEdge is AddEdge for a dependency link established by Track
// (auto-tracking a read inside a recompute closure). Kept as a distinct
// entry point, rather than a parameter on AddEdge, so every existing
// explicit/static caller keeps compiling unchanged.
func (g *Graph) AddAutoEdge(observer, dependency *ReactiveNode) error {
	return g.addEdge(observer, dependency, true)
}

func (g *Graph) addEdge(observer, dependency *ReactiveNode, auto bool) error {
	if observer == dependency {
		return NewError(KindSelfObservation, "node %d cannot observe itself", observer.id)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.addNodeLocked(observer)
	g.addNodeLocked(dependency)

	if g.hasCycleLocked(observer, dependency) {
		return NewError(KindDependencyCycle, "adding edge %d -> %d would create a cycle", observer.id, dependency.id)
	}

	link(observer, dependency, auto)
	g.bumpVersionLocked()
	return nil
}

// hasCycleLocked detects whether adding observer->dependency would
// create a cycle, using the tentative-insert-then-DFS-then-remove
// technique from observer_graph.h's hasCycle, cached by (observer,
// dependency, version) per spec.md §4.3.
func (g *Graph) hasCycleLocked(observer, dependency *ReactiveNode) bool {
	key := nodePair{observer: observer, dependency: dependency}
	if cached, ok := g.cycleCache.get(key, g.version); ok {
		return cached
	}

	// tentatively add, DFS from observer along dependency edges (the
	// tentative one included); reaching a node already on the current
	// path means the new edge would close a cycle. Then remove the
	// tentative edge regardless of outcome.
	tmp := &DependencyLink{dep: dependency, sub: observer}
	observer.addDepLink(tmp)
	dependency.addSubLink(tmp)

	visited := make(map[*ReactiveNode]bool)
	recursion := make(map[*ReactiveNode]bool)
	result := dfsHasCycle(observer, visited, recursion)

	observer.removeDepLink(tmp)
	dependency.removeSubLink(tmp)

	g.cycleCache.put(key, result, g.version)
	return result
}

func dfsHasCycle(node *ReactiveNode, visited, recursion map[*ReactiveNode]bool) bool {
	if recursion[node] {
		return true
	}
	if visited[node] {
		return false
	}
	visited[node] = true
	recursion[node] = true

	for dep := range node.Deps() {
		if dfsHasCycle(dep, visited, recursion) {
			return true
		}
	}

	recursion[node] = false
	return false
}

// UpdateObserversTransactional clears node's current dependency set and
// installs newDeps, rolling back to the exact prior edge set if any
// addition fails (spec.md §4.3, §4.2 Reset steps 3-4).
func (g *Graph) UpdateObserversTransactional(node *ReactiveNode, newDeps ...*ReactiveNode) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	original := make([]*ReactiveNode, 0, 4)
	for d := range node.Deps() {
		original = append(original, d)
	}

	g.resetNodeLocked(node)

	for _, dep := range newDeps {
		if dep == nil {
			g.resetNodeLocked(node)
			g.restoreLocked(node, original)
			return NewError(KindNullPointer, "reset: dependency handle has expired")
		}
		if node == dep {
			g.resetNodeLocked(node)
			g.restoreLocked(node, original)
			return NewError(KindSelfObservation, "node %d cannot observe itself", node.id)
		}
		g.addNodeLocked(dep)
		if g.hasCycleLocked(node, dep) {
			g.resetNodeLocked(node)
			g.restoreLocked(node, original)
			return NewError(KindDependencyCycle, "reset: edge %d -> %d would create a cycle", node.id, dep.id)
		}
		link(node, dep, false)
	}

	node.deps = append([]*ReactiveNode(nil), newDeps...)
	g.bumpVersionLocked()
	return nil
}

func (g *Graph) restoreLocked(node *ReactiveNode, original []*ReactiveNode) {
	for _, dep := range original {
		link(node, dep, false)
	}
	node.deps = original
	g.bumpVersionLocked()
}

// resetNodeLocked clears node's outgoing dependency edges only.
func (g *Graph) resetNodeLocked(node *ReactiveNode) {
	node.clearDeps()
}

// SaveStateForRollback snapshots node's current dependency set and
// returns a closure that restores it, per spec.md §4.3.
func (g *Graph) SaveStateForRollback(node *ReactiveNode) func() {
	g.mu.Lock()
	defer g.mu.Unlock()

	original := make([]*ReactiveNode, 0, 4)
	for d := range node.Deps() {
		original = append(original, d)
	}

	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		g.resetNodeLocked(node)
		g.restoreLocked(node, original)
	}
}

// CloseNode cascade-removes node and, in post-order, every node that
// transitively observes it (spec.md §3 "closing", §8 "Closing a node
// closes all its transitive observers and exactly those").
func (g *Graph) CloseNode(node *ReactiveNode) {
	if node == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	closed := make(map[*ReactiveNode]bool)
	g.cascadeCloseLocked(node, closed)
}

func (g *Graph) cascadeCloseLocked(node *ReactiveNode, closed map[*ReactiveNode]bool) {
	if node == nil || closed[node] {
		return
	}
	closed[node] = true

	observers := make([]*ReactiveNode, 0, 4)
	for ob := range node.Subs() {
		observers = append(observers, ob)
	}
	for _, ob := range observers {
		g.cascadeCloseLocked(ob, closed)
	}

	g.closeOneLocked(node)
}

func (g *Graph) closeOneLocked(node *ReactiveNode) {
	node.clearDeps()
	node.cell.Invalidate()

	for ob := range node.Subs() {
		// ob still observes node through a link whose other half we must
		// drop; removeSubLink only detaches node's own side, so walk
		// ob's deps to find and clear the matching link.
		for l := ob.depsHead; l != nil; {
			next := l.nextDep
			if l.dep == node {
				ob.removeDepLink(l)
			}
			l = next
		}
	}
	node.subsHead = nil

	delete(g.registered, node)
	delete(g.names, node)
	delete(g.activeBatchNodes, node)

	g.bumpVersionLocked()
}

// RegisterActiveBatch marks nodes as protected by batchID (I6); Reset
// on a protected node is rejected with ErrBatchOperationConflict until
// UnregisterActiveBatch is called. CloseNode does not check this
// protection: it closes a protected node like any other.
func (g *Graph) RegisterActiveBatch(id batchID, nodes []*ReactiveNode) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, n := range nodes {
		if g.activeBatchNodes[n] == nil {
			g.activeBatchNodes[n] = make(map[batchID]struct{})
		}
		g.activeBatchNodes[n][id] = struct{}{}
		n.incBatchCount()
	}
	g.activeBatchIDs[id] = struct{}{}
}

func (g *Graph) UnregisterActiveBatch(id batchID, nodes []*ReactiveNode) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.activeBatchIDs, id)
	for _, n := range nodes {
		if set, ok := g.activeBatchNodes[n]; ok {
			if _, had := set[id]; had {
				delete(set, id)
				n.decBatchCount()
			}
			if len(set) == 0 {
				delete(g.activeBatchNodes, n)
			}
		}
	}
}

// IsRegistered reports whether node is still a live member of the
// graph (false after CloseNode has removed it, directly or via
// cascade).
func (g *Graph) IsRegistered(node *ReactiveNode) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.registered[node]
	return ok
}

func (g *Graph) IsNodeInActiveBatch(node *ReactiveNode) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	set, ok := g.activeBatchNodes[node]
	return ok && len(set) > 0
}

// CollectObservers recursively collects the transitive observer set of
// node into out, updating each visited node's depth to max(old, depth)
// along the way (spec.md §4.3 collect_observers). Immediate-observer
// results are cached per node per structural version.
func (g *Graph) CollectObservers(node *ReactiveNode, out map[*ReactiveNode]struct{}, depth int32) {
	if node == nil {
		return
	}

	var immediate []*ReactiveNode
	if cached, ok := g.observerCache.get(node, g.currentVersion()); ok {
		immediate = cached
	} else {
		g.mu.RLock()
		immediate = make([]*ReactiveNode, 0, 4)
		for ob := range node.Subs() {
			immediate = append(immediate, ob)
		}
		g.mu.RUnlock()
		g.observerCache.put(node, immediate, g.currentVersion())
	}

	for _, ob := range immediate {
		ob.updateDepth(depth)
		out[ob] = struct{}{}
		g.CollectObservers(ob, out, depth+1)
	}
}

func (g *Graph) currentVersion() uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.version
}

func (g *Graph) SetName(node *ReactiveNode, name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.names[node] = name
	node.name = name
}

func (g *Graph) GetName(node *ReactiveNode) string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.names[node]
}

// GraphCacheStats exposes the cache hit/miss counters for diagnostics, mirroring
// ObserverGraph::CacheStats.
type GraphCacheStats struct {
	Cycle    Stats
	Observer Stats
}

func (g *Graph) CacheStats() GraphCacheStats {
	return GraphCacheStats{
		Cycle:    g.cycleCache.stats(),
		Observer: g.observerCache.stats(),
	}
}

func (g *Graph) TriggerCacheCleanup() {
	g.cycleCache.triggerCleanup()
	g.observerCache.triggerCleanup()
}
