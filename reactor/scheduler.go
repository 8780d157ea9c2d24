package reactor

// MaxReactionIterations caps how many times the pending-reaction queue may
// be drained and refilled before the core gives up and reports
// REACTION_DIVERGENCE — protection against a reaction that keeps
// retriggering itself or another reaction forever (spec §4.5, §8 scenario
// 6).
const MaxReactionIterations = 100

// StartBatch opens a transaction, gating reaction execution until a
// matching EndBatch brings the depth back to zero (spec §4.5). Computed
// values still revalidate synchronously inside a batch; only reaction side
// effects are deferred.
func StartBatch() {
	global.transactionDepth++
}

// EndBatch closes a transaction. When the depth returns to zero, the
// pending-reactions queue is drained.
func EndBatch() {
	global.transactionDepth--
	if global.transactionDepth == 0 {
		runReactions()
	}
}

// Transaction runs fn inside a batch, deferring every reaction triggered
// by fn until fn returns — and, for nested transactions, until the
// outermost one returns (spec §6, property P6). EndBatch runs via defer so
// the batch always closes even if fn panics.
func Transaction(fn func()) {
	StartBatch()
	defer EndBatch()
	fn()
}

// runReactions drains the pending-reactions queue until it is empty,
// re-entering the drain if reactions scheduled during one pass enqueue
// more for the next. If MaxReactionIterations passes happen without the
// queue running dry, it panics with a *Error naming the reaction that was
// about to run when the cap was hit — callers going through Action or
// ObservableValue.Set recover this panic and return it as an ordinary
// error; callers of Transaction, Atom.ReportChanged or Reaction.Schedule
// see the panic propagate, matching spec §7's "fails with" language for
// this condition.
func runReactions() {
	if global.isRunningReactions || global.transactionDepth > 0 {
		return
	}
	global.isRunningReactions = true
	defer func() { global.isRunningReactions = false }()

	for iteration := 0; len(global.pendingReactions) > 0; iteration++ {
		if iteration >= MaxReactionIterations {
			offender := global.pendingReactions[0]
			panic(newError(KindReactionDivergence, offender.reactionName,
				"pending-reactions queue did not drain within the iteration cap", nil))
		}

		batch := global.pendingReactions
		global.pendingReactions = nil

		for _, r := range batch {
			r.isScheduled = false
			if r.isDisposed {
				continue
			}
			runOneReaction(r)
		}
	}
}

func runOneReaction(r *Reaction) {
	emitSpy(SpyEvent{Type: SpyReactionStart, Name: r.reactionName})
	defer emitSpy(SpyEvent{Type: SpyReactionEnd, Name: r.reactionName})

	r.isTrackPending = true
	if r.onInvalidate != nil {
		r.onInvalidate(r)
	}
}

// recoverToError runs fn and converts any *Error panic raised by
// runReactions (or anything else under fn) into a returned error, so
// public entry points stay idiomatic Go: callers get an error value, not
// a panic, for a condition the engine can name precisely.
func recoverToError(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(*Error); ok {
				err = e
				return
			}
			panic(r)
		}
	}()
	fn()
	return nil
}
