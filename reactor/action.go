package reactor

// Action runs fn inside a transaction with state mutation permitted and
// reports itself on the spy channel, bracketed by action-start/action-end
// events (spec §6 GLOSSARY: "Action — a transaction that also permits state
// mutation and reports itself to the spy channel"). Any *Error panic
// raised inside fn (including a deferred REACTION_DIVERGENCE from the
// reaction drain this action's writes trigger) is converted into a
// returned error rather than propagating as a panic.
func Action[T any](fn func() (T, error)) (T, error) {
	return ActionNamed("action", fn)
}

// ActionNamed is Action with an explicit name for the spy channel.
func ActionNamed[T any](name string, fn func() (T, error)) (T, error) {
	var result T
	var fnErr error

	emitSpy(SpyEvent{Type: SpyActionStart, Name: name})
	panicErr := recoverToError(func() {
		global.withAllowStateChanges(true, func() {
			Transaction(func() {
				result, fnErr = fn()
			})
		})
	})
	emitSpy(SpyEvent{Type: SpyActionEnd, Name: name})

	if panicErr != nil {
		return result, panicErr
	}
	return result, fnErr
}
