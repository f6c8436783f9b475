package reactor

import "github.com/kestrel-dev/reactor/internal"

// Debug renders h's node and its dependency subtree as an ASCII tree,
// grounded on the treedrawer-based dependency dump used elsewhere in
// the example pack for diagnosing resolution failures.
func Debug(h ref) string {
	n := h.node()
	if n == nil {
		return "(closed handle)"
	}
	return internal.DumpTree(internal.DefaultGraph(), n)
}

// CacheStats exposes the graph's cycle-detection and observer-cache hit
// ratios for diagnostics.
func CacheStats() internal.GraphCacheStats {
	return internal.DefaultGraph().CacheStats()
}
