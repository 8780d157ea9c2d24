package reactor

// globalState is the single process-wide structure backing the derivation
// stack, run-id counter, transaction depth, pending-reaction queue and the
// two mode flags (strict mutation checking, dependency tracking). It plays
// the role the teacher's ReactiveContext plays for a single observer/
// tracking pair, generalized to a full stack per spec §4.4/§9.
type globalState struct {
	// derivationStack is the stack of derivations currently tracking a run;
	// the top is "the" current derivation that observable reads bind to.
	derivationStack []derivation
	// tracking is false inside Untracked regions even while a derivation is
	// on the stack, so reads don't bind.
	tracking bool
	// runID is incremented at the start of every trackDerivedFunction call.
	runID int64
	// transactionDepth gates reaction execution; reactions only run when it
	// returns to zero.
	transactionDepth int
	// pendingReactions is the FIFO queue of reactions scheduled during the
	// current or a now-closed batch, awaiting the drain.
	pendingReactions []*Reaction
	// isRunningReactions guards run-reactions against re-entrant drains.
	isRunningReactions bool
	// allowStateChanges is false by default (strict mode): atom writes
	// outside an action fail with STATE_MUTATION_DISALLOWED.
	allowStateChanges bool
	// strictMode toggles whether allowStateChanges is enforced at all.
	strictMode bool

	spies []SpyListener
}

func newGlobalState() *globalState {
	return &globalState{strictMode: true}
}

var global = newGlobalState()

// ResetGlobalState restores the engine to its factory defaults: empty
// derivation stack, zero run-id, zero transaction depth, empty pending
// queue, strict mode on, tracking off, no spy listeners. Used by tests and
// by callers recovering from an INVARIANT_VIOLATION.
func ResetGlobalState() {
	global = newGlobalState()
}

func (g *globalState) currentDerivation() derivation {
	if len(g.derivationStack) == 0 {
		return nil
	}
	return g.derivationStack[len(g.derivationStack)-1]
}

func (g *globalState) pushDerivation(d derivation) {
	g.derivationStack = append(g.derivationStack, d)
}

func (g *globalState) popDerivation() {
	g.derivationStack = g.derivationStack[:len(g.derivationStack)-1]
}

// withTracking runs fn with tracking forced to the given value, restoring
// the previous value on every exit path including a panic — the scoped
// acquisition pattern spec §9 asks for, generalized from the teacher's
// wrap() save/defer/restore of a single observer+tracking pair.
func (g *globalState) withTracking(tracking bool, fn func()) {
	prev := g.tracking
	g.tracking = tracking
	defer func() { g.tracking = prev }()
	fn()
}

func (g *globalState) withAllowStateChanges(allow bool, fn func()) {
	prev := g.allowStateChanges
	g.allowStateChanges = allow
	defer func() { g.allowStateChanges = prev }()
	fn()
}

func (g *globalState) checkMutationAllowed(node observable) error {
	if !g.strictMode || g.allowStateChanges {
		return nil
	}
	return newError(KindStateMutationDisallowed, node.name(),
		"mutation outside an action while strict mode is on", nil)
}
