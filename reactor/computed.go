package reactor

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// computedCacheState records whether a Computed's cached value (or cached
// error) may be returned as is, in the vocabulary reactively/reactively.go
// uses for its CacheState enum: Clean (cached value is valid), Check (might
// be stale, ask upstream), Dirty (definitely needs recomputation). Only
// Clean and Dirty are ever assigned; Get's hot regime recomputes unless the
// state is Clean.
type computedCacheState int

const (
	cacheClean computedCacheState = iota
	cacheCheck
	cacheDirty
)

// Computed is a memoized derivation. While it has observers it returns its
// cached value (or cached error) and recomputes only when at least one of
// its dependencies actually changed, eagerly during the change wave; while
// it has no observers every read recomputes. It is simultaneously an observer (it tracks atoms and
// other computed values) and an observable (other derivations can depend
// on it) — spec §3.
type Computed[T any] struct {
	derivationBase

	computedName string
	computedID   int64
	diffValue_   int

	observers mapset.Set[derivation]

	getter func() T
	setter func(T) error
	equals EqualsFunc[T]

	value         T
	lastErr       error
	cacheState    computedCacheState
	isComputing   bool
	everComputed  bool
}

// ComputedOptions configures a Computed beyond its getter.
type ComputedOptions[T any] struct {
	Equals EqualsFunc[T]
	Setter func(T) error
}

// NewComputed constructs a lazy, memoized derivation. getter must be pure:
// it may only read atoms/other computed values, never write them.
func NewComputed[T any](name string, getter func() T, opts *ComputedOptions[T]) *Computed[T] {
	c := &Computed[T]{
		computedName: name,
		computedID:   nextID(name),
		observers:    mapset.NewThreadUnsafeSet[derivation](),
		getter:       getter,
		cacheState:   cacheDirty,
		equals:       defaultEquals[T],
	}
	if opts != nil {
		if opts.Equals != nil {
			c.equals = opts.Equals
		}
		c.setter = opts.Setter
	}
	return c
}

func (c *Computed[T]) name() string         { return c.computedName }
func (c *Computed[T]) id() int64            { return c.computedID }
func (c *Computed[T]) base() *derivationBase { return &c.derivationBase }
func (c *Computed[T]) diffValue() int        { return c.diffValue_ }
func (c *Computed[T]) setDiffValue(v int)    { c.diffValue_ = v }

func (c *Computed[T]) observersSnapshot() []derivation {
	return c.observers.ToSlice()
}

func (c *Computed[T]) addObserver(d derivation) {
	c.observers.Add(d)
}

func (c *Computed[T]) removeObserver(d derivation) {
	c.observers.Remove(d)
}

// ObserverCount reports how many derivations currently depend on this
// computed value.
func (c *Computed[T]) ObserverCount() int { return c.observers.Cardinality() }

func (c *Computed[T]) hasObservers() bool { return c.observers.Cardinality() > 0 }

// reportObserved binds this computed as a dependency of whatever is on top
// of the derivation stack, exactly like an atom. It does not itself force a
// recompute: Get() decides whether to recompute before calling this.
func (c *Computed[T]) reportObserved() {
	if !global.tracking {
		return
	}
	d := global.currentDerivation()
	if d == nil {
		return
	}
	b := d.base()
	if b.unboundDepsCount < len(b.observing) {
		b.observing[b.unboundDepsCount] = c
	} else {
		b.observing = append(b.observing, c)
	}
	b.unboundDepsCount++
	emitSpy(SpyEvent{Type: SpyObserve, Name: c.computedName})
}

// Get implements the three regimes named in spec §4.2.
func (c *Computed[T]) Get() (T, error) {
	switch {
	case global.tracking && c.hasObservers():
		// Regime 1: tracked, hot. Revalidate only if a dependency changed
		// since the last compute; the cache state is kept current by
		// onDependenciesReady, so a plain read here is enough.
		if c.cacheState != cacheClean {
			if err := c.recompute(); err != nil {
				c.reportObserved()
				return c.value, err
			}
		}
		c.reportObserved()
		return c.value, c.lastErr

	case global.tracking && !c.hasObservers():
		// Regime 2: tracked, cold. Recompute under tracking, which binds
		// this computed to everything its getter reads, and bind the
		// computed itself as a dependency of the outer derivation, so the
		// outer derivation is re-run if this computed's inputs ever change
		// again.
		if err := c.recompute(); err != nil {
			c.reportObserved()
			return c.value, err
		}
		c.reportObserved()
		return c.value, c.lastErr

	default:
		// Regime 3: untracked read. Recompute without binding anywhere.
		if err := c.recomputeUntracked(); err != nil {
			return c.value, err
		}
		return c.value, c.lastErr
	}
}

// Set runs the setter (if any) inside an action. Per spec §4.2 the setter
// may only write atoms, never other computed values — that constraint is
// enforced by the graph itself (there is no public API to "set" a
// Computed's cache directly), not checked here.
func (c *Computed[T]) Set(v T) error {
	if c.setter == nil {
		return newError(KindInvariantViolation, c.computedName, "computed has no setter", nil)
	}
	_, err := Action(func() (struct{}, error) {
		return struct{}{}, c.setter(v)
	})
	return err
}

// recompute runs the getter under full tracking, binding this computed as
// an observer of everything it reads.
func (c *Computed[T]) recompute() error {
	return c.runGetter(true)
}

// recomputeUntracked runs the getter without binding any dependencies at
// all — used for untracked reads (regime 3) where no one needs to be
// notified of future changes.
func (c *Computed[T]) recomputeUntracked() error {
	if global.tracking {
		var err error
		global.withTracking(false, func() {
			err = c.runGetter(false)
		})
		return err
	}
	return c.runGetter(false)
}

func (c *Computed[T]) runGetter(bindDeps bool) error {
	if c.isComputing {
		// Panic rather than return: the re-entrant Get is inside this
		// computed's own getter, which may drop a returned error. The
		// outer runGetter's recover below turns it into this read's error.
		panic(newError(KindCycleDetected, c.computedName, "computed value reads itself transitively", nil))
	}
	c.isComputing = true
	defer func() { c.isComputing = false }()

	var newValue T
	var panicErr error

	run := func() {
		defer func() {
			if r := recover(); r != nil {
				if e, ok := r.(*Error); ok && e.Kind == KindCycleDetected {
					panicErr = e
					return
				}
				panicErr = asComputedError(c.computedName, r)
			}
		}()
		newValue = c.getter()
	}

	if bindDeps {
		trackDerivedFunction(c, run)
	} else {
		run()
	}

	if panicErr != nil {
		c.lastErr = panicErr
		c.cacheState = cacheClean
		c.everComputed = true
		emitSpy(SpyEvent{Type: SpyErrorEvent, Name: c.computedName, Err: panicErr})
		return panicErr
	}

	if c.everComputed && c.equals(c.value, newValue) {
		c.lastErr = nil
		c.cacheState = cacheClean
		emitSpy(SpyEvent{Type: SpyCompute, Name: c.computedName, Changed: false})
		return nil
	}

	c.value = newValue
	c.lastErr = nil
	c.cacheState = cacheClean
	c.everComputed = true
	emitSpy(SpyEvent{Type: SpyCompute, Name: c.computedName, Changed: true})
	return nil
}

// onDependenciesReady is called once every upstream dependency has
// settled. If nothing changed, the cache stays valid and we report
// changed=false upward without touching the getter. If something did
// change, we eagerly revalidate right here (rather than waiting for the
// next read) so that an observed computed's cache is never stale when read
// (invariant I4) — the recompute result tells us whether to propagate
// changed=true or changed=false further up.
func (c *Computed[T]) onDependenciesReady(changed bool) bool {
	if !changed {
		c.cacheState = cacheClean
		return false
	}
	c.cacheState = cacheDirty
	prevValue := c.value
	prevErr := c.lastErr
	if err := c.recompute(); err != nil {
		return true
	}
	if c.lastErr == nil && prevErr == nil && c.equals(prevValue, c.value) {
		return false
	}
	return true
}

func asComputedError(name string, r any) error {
	if err, ok := r.(error); ok {
		return newError(KindComputedThrew, name, "getter panicked", err)
	}
	return newError(KindComputedThrew, name, "getter panicked", nil)
}
