package reactor

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// Atom is a leaf observable: the source of truth at the bottom of the
// dependency graph. It holds no value itself — ObservableValue pairs an
// Atom with a value and an equality predicate — but it owns the observer
// set and the become-observed/become-unobserved lifecycle hooks.
type Atom struct {
	atomName string
	atomID   int64

	observers mapset.Set[derivation]

	// diffValue_ is scratch space used only during trackDerivedFunction's
	// bind/unbind pass (spec §4.4); it is always zero outside that window.
	diffValue_ int

	onBecomeObserved   func()
	onBecomeUnobserved func()
}

// NewAtom creates a leaf observable. Either hook may be nil.
func NewAtom(name string, onBecomeObserved, onBecomeUnobserved func()) *Atom {
	return &Atom{
		atomName:           name,
		atomID:             nextID(name),
		observers:          mapset.NewThreadUnsafeSet[derivation](),
		onBecomeObserved:   onBecomeObserved,
		onBecomeUnobserved: onBecomeUnobserved,
	}
}

func (a *Atom) name() string { return a.atomName }
func (a *Atom) id() int64    { return a.atomID }

// Name and ID are the public accessors; the lowercase name()/id() pair
// satisfies the internal observable interface without exposing receiver
// method sets that callers could confuse with dependency-tree walks.
func (a *Atom) Name() string { return a.atomName }
func (a *Atom) ID() int64    { return a.atomID }

// ObserverCount reports how many derivations currently depend on this atom.
func (a *Atom) ObserverCount() int { return a.observers.Cardinality() }

// ReportObserved registers this atom as a dependency of the derivation
// currently on top of the global derivation stack, if tracking is active.
// Duplicate reads within the same run are tolerated: the bind/unbind pass
// in trackDerivedFunction deduplicates them.
func (a *Atom) ReportObserved() {
	if !global.tracking {
		return
	}
	d := global.currentDerivation()
	if d == nil {
		return
	}
	b := d.base()
	if b.unboundDepsCount < len(b.observing) {
		b.observing[b.unboundDepsCount] = a
	} else {
		b.observing = append(b.observing, a)
	}
	b.unboundDepsCount++
	emitSpy(SpyEvent{Type: SpyObserve, Name: a.atomName})
}

// ReportChanged broadcasts a full stale/ready wave to every observer of
// this atom. If called outside an open transaction, a single-write batch is
// opened and closed around the broadcast automatically (spec §4.1).
func (a *Atom) ReportChanged() {
	implicit := global.transactionDepth == 0
	if implicit {
		StartBatch()
	}

	emitSpy(SpyEvent{Type: SpyUpdate, Name: a.atomName})

	observers := a.observers.ToSlice()
	for _, o := range observers {
		notifyDependencyStale(o)
	}
	for _, o := range observers {
		notifyDependencyReady(o, true)
	}

	if implicit {
		EndBatch()
	}
}

func (a *Atom) addObserver(d derivation) {
	wasEmpty := a.observers.Cardinality() == 0
	a.observers.Add(d)
	if wasEmpty && a.onBecomeObserved != nil {
		a.onBecomeObserved()
	}
}

func (a *Atom) removeObserver(d derivation) {
	if !a.observers.Contains(d) {
		return
	}
	a.observers.Remove(d)
	if a.observers.Cardinality() == 0 && a.onBecomeUnobserved != nil {
		a.onBecomeUnobserved()
	}
}

func (a *Atom) reportObserved() { a.ReportObserved() }

func (a *Atom) diffValue() int     { return a.diffValue_ }
func (a *Atom) setDiffValue(v int) { a.diffValue_ = v }
