package reactor

// derivationBase is the bookkeeping shared by every derivation (computed
// value or reaction): the ordered list of dependencies read during the last
// run, the run-id stamped at the start of that run, and the two counters
// that drive the two-phase stale/ready propagation in spec §4.4.
type derivationBase struct {
	// observing holds the atoms/derivations read during the last run, in
	// read order. A node read more than once appears more than once; the
	// bind/unbind pass at the end of trackDerivedFunction still adds this
	// derivation to that node's observer set only once.
	observing []observable
	// unboundDepsCount is the write cursor into observing during a track.
	unboundDepsCount int
	// runID is the value of global.runID stamped when this derivation's
	// last track began; nothing in the package reads it back.
	runID int64
	// dependencyStaleCount counts upstream dependencies currently in the
	// stale interval; zero outside the propagation window (invariant I3).
	dependencyStaleCount int
	// dependencyChangeCount counts how many of those actually produced a
	// new value during the current stale interval; reset once consumed.
	dependencyChangeCount int
}

// hasOwnObservers is implemented by derivations that are themselves
// observable — i.e. Computed, which is "both observer and observable"
// (spec §3). Reaction does not implement it: reactions are terminal, so
// staleness/readiness propagation stops at them.
type hasOwnObservers interface {
	observersSnapshot() []derivation
}

func derivationObservers(d derivation) ([]derivation, bool) {
	h, ok := d.(hasOwnObservers)
	if !ok {
		return nil, false
	}
	return h.observersSnapshot(), true
}

// bindCurrentDerivation appends o to the observing list of whatever
// derivation is on top of the global stack, growing or overwriting the
// slice at the write cursor exactly like trackDerivedFunction expects.
// Atom.ReportObserved and Computed.reportObserved do not call it: each
// performs the same steps inline and then emits a spy observe event.
func bindCurrentDerivation(o observable) {
	if !global.tracking {
		return
	}
	d := global.currentDerivation()
	if d == nil {
		return
	}
	b := d.base()
	if b.unboundDepsCount < len(b.observing) {
		b.observing[b.unboundDepsCount] = o
	} else {
		b.observing = append(b.observing, o)
	}
	b.unboundDepsCount++
}

// trackDerivedFunction runs fn with d as the active tracking derivation,
// then reconciles d.observing against its previous contents in a single
// O(|old|+|new|) pass using the diff-value scratch field every atom
// carries (spec §4.4). On return, every atom read during fn has this
// derivation in its observer set, and every atom read last time but not
// this time has had it removed.
//
// If fn panics, the previous observing list is restored verbatim, the
// write cursor is zeroed, the derivation stack and tracking flag are
// unwound via defer, and the panic is re-thrown — trackDerivedFunction
// never leaves a partially-bound observer graph behind.
func trackDerivedFunction(d derivation, fn func()) {
	b := d.base()
	prevObserving := b.observing

	b.observing = make([]observable, 0, len(prevObserving)+4)
	b.unboundDepsCount = 0
	global.runID++
	b.runID = global.runID

	global.pushDerivation(d)
	prevTracking := global.tracking
	global.tracking = true

	succeeded := false
	defer func() {
		global.tracking = prevTracking
		global.popDerivation()

		if !succeeded {
			b.observing = prevObserving
			b.unboundDepsCount = 0
			return
		}

		b.observing = b.observing[:b.unboundDepsCount]
		bindUnbindDiff(d, prevObserving, b.observing)
	}()

	fn()
	succeeded = true
}

// bindUnbindDiff implements the mark/sweep described in spec §4.4: mark
// every previously-observed node as dropped (diffValue = -1), then for
// each node in the new observing list bump its diffValue; a transition to
// 1 means it is a fresh dependency this run, so bind it. Finally, anything
// still left negative in the old list was genuinely dropped and gets
// unbound. Every node's diffValue ends at zero, so no reset pass is ever
// needed before the next run.
func bindUnbindDiff(d derivation, prevObserving, newObserving []observable) {
	for _, o := range prevObserving {
		o.setDiffValue(-1)
	}

	for _, o := range newObserving {
		dv := o.diffValue() + 1
		o.setDiffValue(dv)
		if dv == 1 {
			o.setDiffValue(0)
			o.addObserver(d)
		}
	}

	for _, o := range prevObserving {
		dv := o.diffValue()
		if dv < 0 {
			o.setDiffValue(0)
			o.removeObserver(d)
		}
	}
}

// propagateStaleness marks every observer of d as stale, recursing into an
// observer's own observers exactly when that observer's stale count just
// transitioned from 0 to 1 (spec §4.4) — the point at which it was
// previously settled and is now, for the first time this wave, waiting.
func propagateStaleness(d derivation) {
	obs, ok := derivationObservers(d)
	if !ok {
		return
	}
	for _, o := range obs {
		notifyDependencyStale(o)
	}
}

func notifyDependencyStale(d derivation) {
	b := d.base()
	b.dependencyStaleCount++
	if b.dependencyStaleCount == 1 {
		propagateStaleness(d)
	}
}

// notifyDependencyReady is the ready half of the wave: decrement d's stale
// count, fold in whether this particular upstream dependency changed, and
// once the count reaches zero — every upstream input for d has settled —
// either revalidate d (if something changed) or just forward a
// changed=false ready notice upward. Either way d's own observers are then
// notified in turn, so the wave drains outward from the atom that changed.
func notifyDependencyReady(d derivation, changed bool) {
	b := d.base()
	b.dependencyStaleCount--
	if changed {
		b.dependencyChangeCount++
	}
	if b.dependencyStaleCount != 0 {
		return
	}

	anyChanged := b.dependencyChangeCount > 0
	b.dependencyChangeCount = 0

	ownChanged := d.onDependenciesReady(anyChanged)

	obs, ok := derivationObservers(d)
	if !ok {
		return
	}
	for _, o := range obs {
		notifyDependencyReady(o, ownChanged)
	}
}
