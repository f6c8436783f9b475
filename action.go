package reactor

import "github.com/kestrel-dev/reactor/internal"

// NewAction registers a side-effecting closure that runs once at
// construction and again whenever its auto-tracked dependencies change
// and its trigger policy fires (spec.md §4.2 "Action"). Its return
// value (struct{}) carries no user-meaningful data — an Action's
// Handle exists only to control its lifetime and ordering relative to
// other nodes.
func NewAction(fn func(), opts ...Option) *Handle[struct{}] {
	g := internal.DefaultGraph()
	n, err := internal.NewAction(g, func(*internal.ReactiveNode) (any, error) {
		return struct{}{}, runAction(fn)
	})
	if err != nil {
		internal.Log().Warn("NewAction construction failed", "err", err)
		n = internal.NewVariable(g, struct{}{})
	}
	applyOptions(n, opts)
	return wrap[struct{}](internal.NewHandle(g, n))
}

func runAction(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = internal.NewError(internal.KindUnknown, "Action closure panicked: %v", r)
		}
	}()
	fn()
	return nil
}
