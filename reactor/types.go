package reactor

// observable is anything that can be read while a derivation is tracking:
// an Atom (an ObservableValue is read through its Atom), or a Computed
// value acting as a dependency.
type observable interface {
	name() string
	id() int64
	reportObserved()
	addObserver(d derivation)
	removeObserver(d derivation)
	// diffValue/setDiffValue expose the scratch int every observable node
	// carries for trackDerivedFunction's bind/unbind pass (spec §3, §4.4).
	// It is always zero outside that pass.
	diffValue() int
	setDiffValue(v int)
}

// derivation is anything that can track dependencies: a Computed value or
// a Reaction. Both embed derivationBase, the shared bookkeeping that base()
// returns; each type implements the methods below itself, and
// onDependenciesReady is the one place their behavior splits (a computed
// revalidates itself; a reaction schedules itself).
type derivation interface {
	name() string
	id() int64
	base() *derivationBase
	// onDependenciesReady is invoked once all upstream dependencies have
	// settled after a stale wave. changed reports whether any of them
	// actually produced a new value. It returns whether this derivation's
	// own value changed, so the wave can continue propagating upward for
	// computed values (reactions always return false; they are terminal).
	onDependenciesReady(changed bool) bool
}
