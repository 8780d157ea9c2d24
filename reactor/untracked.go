package reactor

// Untracked runs fn with dependency binding suppressed: atom/computed reads
// inside fn do not get added to the observing set of whatever derivation is
// currently tracking (spec §4.5, property P4). The current derivation stays
// on the stack; only the tracking flag is cleared, and only for the
// duration of fn.
func Untracked[T any](fn func() T) T {
	var result T
	global.withTracking(false, func() {
		result = fn()
	})
	return result
}

// AllowStateChanges temporarily overrides strict mode's mutation guard for
// the duration of fn, then restores the previous permission on every exit
// path including a panic (spec §4.5, §9 "scoped acquisition").
func AllowStateChanges[T any](allow bool, fn func() T) T {
	var result T
	global.withAllowStateChanges(allow, func() {
		result = fn()
	})
	return result
}

// SetStrictMode toggles whether mutating an atom outside an action (or an
// AllowStateChanges region) fails with STATE_MUTATION_DISALLOWED. Strict
// mode defaults to on (DESIGN.md "Open Questions resolved").
func SetStrictMode(on bool) {
	global.strictMode = on
}
