package reactor

// Reaction is an eager, scheduled derivation with side effects. It never
// caches a value and is never itself observed — it is a terminal node in
// the graph (spec §3/§4.3). Its onInvalidate callback is how it asks its
// owner to actually re-run track(fn); the reaction itself only manages
// scheduling and the observing-set lifecycle.
type Reaction struct {
	derivationBase

	reactionName string
	reactionID   int64

	onInvalidate func(r *Reaction)

	isScheduled    bool
	isTrackPending bool
	isRunning      bool
	isDisposed     bool
}

// NewReaction constructs a reaction. onInvalidate is called whenever the
// reaction becomes stale and ready to re-run; it is expected to call
// r.Track(fn) with whatever effectful function this reaction observes.
func NewReaction(name string, onInvalidate func(r *Reaction)) *Reaction {
	return &Reaction{
		reactionName: name,
		reactionID:   nextID(name),
		onInvalidate: onInvalidate,
	}
}

func (r *Reaction) name() string          { return r.reactionName }
func (r *Reaction) id() int64             { return r.reactionID }
func (r *Reaction) base() *derivationBase { return &r.derivationBase }

// IsScheduled reports whether this reaction is currently sitting in the
// pending-reactions queue awaiting a drain.
func (r *Reaction) IsScheduled() bool { return r.isScheduled }

// IsDisposed reports whether Dispose has been called.
func (r *Reaction) IsDisposed() bool { return r.isDisposed }

// onDependenciesReady implements the reaction half of spec §4.3/§4.4:
// reactions never propagate a value upward (there is nothing above a
// terminal node), they only schedule themselves once their dependencies
// have actually changed.
func (r *Reaction) onDependenciesReady(changed bool) bool {
	if changed && !r.isDisposed {
		r.Schedule()
	}
	return false
}

// Schedule appends this reaction to the global pending queue and triggers
// a drain unless a transaction is open or the runner is already active
// (spec §4.3, §4.5).
func (r *Reaction) Schedule() {
	if r.isScheduled || r.isDisposed {
		return
	}
	r.isScheduled = true
	global.pendingReactions = append(global.pendingReactions, r)
	emitSpy(SpyEvent{Type: SpyReactionScheduled, Name: r.reactionName})

	if global.transactionDepth == 0 && !global.isRunningReactions {
		runReactions()
	}
}

// Track runs fn as this reaction's tracked body, rebinding its dependency
// set exactly like a computed's getter would. If the reaction was disposed
// while fn was running (e.g. fn itself called Dispose), the observing set
// is cleared now instead of mid-run (spec §3 "Lifecycle").
func (r *Reaction) Track(fn func()) {
	r.isRunning = true
	trackDerivedFunction(r, fn)
	r.isRunning = false
	r.isTrackPending = false

	if r.isDisposed {
		r.clearObserving()
	}
}

// Dispose clears this reaction's observing set — unbinding it from every
// atom/computed it was reading — and marks it terminal. Safe to call at
// any time, including from within the reaction's own tracked body: if
// called mid-run, the clear is deferred until Track's run finishes.
func (r *Reaction) Dispose() {
	if r.isDisposed {
		return
	}
	r.isDisposed = true
	if r.isRunning {
		return
	}
	r.clearObserving()
}

// Autorun constructs a reaction whose body is fn, runs it once immediately,
// and re-runs it on its own onInvalidate every time one of its dependencies
// actually changes. It is the thinnest possible convenience built on top of
// Reaction/onInvalidate (spec §6's reaction primitive), matching the
// `autorun(() => ...)` shorthand spec §8's end-to-end scenarios are written
// against.
func Autorun(name string, fn func()) *Reaction {
	r := NewReaction(name, func(r *Reaction) {
		r.Track(fn)
	})
	r.Track(fn)
	return r
}

func (r *Reaction) clearObserving() {
	for _, o := range r.observing {
		o.removeObserver(r)
	}
	r.observing = nil
	r.unboundDepsCount = 0
}
