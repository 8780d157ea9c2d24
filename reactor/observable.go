package reactor

import (
	"math"
	"reflect"
)

// EqualsFunc decides whether writing next over prev should be treated as a
// no-op. Default equality is Go's own == for comparable values, collapsed
// so that two NaN floats compare equal (spec §3: "reference, with
// NaN-collapse") — otherwise every NaN write would be treated as a change
// forever, since NaN != NaN under plain ==. Values that cannot be compared
// with == (slices, maps, funcs, or structs holding them) are compared with
// reflect.DeepEqual instead.
type EqualsFunc[T any] func(prev, next T) bool

// Enhancer optionally rewraps a freshly-assigned value so nested structures
// become observable in their own right. The core has no collection types to
// enhance (those are out of scope, spec §1), so the default enhancer is the
// identity function; callers building collections on top of the core supply
// their own.
type Enhancer[T any] func(next T) T

func defaultEquals[T any](prev, next T) bool {
	p, n := any(prev), any(next)
	if reflect.ValueOf(p).Comparable() && reflect.ValueOf(n).Comparable() {
		return p == n || bothNaN(p, n)
	}
	return reflect.DeepEqual(p, n)
}

func bothNaN(prev, next any) bool {
	pf, ok1 := asFloat(prev)
	nf, ok2 := asFloat(next)
	return ok1 && ok2 && math.IsNaN(pf) && math.IsNaN(nf)
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float32:
		return float64(x), true
	case float64:
		return x, true
	default:
		return 0, false
	}
}

// Structural is an EqualsFunc usable for any T: deep-equality via reflect,
// for payloads (slices, maps, structs holding them) that aren't comparable
// with ==. Grounded on pkg/flimsy/signal.go's use of reflect.DeepEqual.
func Structural[T any](prev, next T) bool {
	return reflect.DeepEqual(prev, next)
}

// ObservableValue pairs an Atom with a held value, an equality predicate,
// and an enhancer. It is the entry point for mutation named in spec §3/§6.
type ObservableValue[T any] struct {
	atom     *Atom
	value    T
	equals   EqualsFunc[T]
	enhancer Enhancer[T]
}

// NewObservableValue constructs an observable value. A nil equals defaults
// to defaultEquals; a nil enhancer defaults to the identity function.
func NewObservableValue[T any](name string, initial T, equals EqualsFunc[T], enhancer Enhancer[T]) *ObservableValue[T] {
	if equals == nil {
		equals = defaultEquals[T]
	}
	if enhancer == nil {
		enhancer = func(v T) T { return v }
	}
	v := &ObservableValue[T]{
		equals:   equals,
		enhancer: enhancer,
	}
	v.value = enhancer(initial)
	v.atom = NewAtom(name, nil, nil)
	return v
}

// Atom exposes the backing Atom, e.g. for devtools tree walks.
func (v *ObservableValue[T]) Atom() *Atom { return v.atom }

// Get reads the current value, reporting this as observed to any tracking
// derivation.
func (v *ObservableValue[T]) Get() T {
	v.atom.ReportObserved()
	return v.value
}

// Set writes a new value through the full prepare/commit path. It returns
// the value actually stored (after enhancement); if the predicate decided
// the write was a no-op, the previous value is returned unchanged and no
// observers are notified.
func (v *ObservableValue[T]) Set(next T) (T, error) {
	prepared, changed := v.PrepareNewValue(next)
	if !changed {
		return v.value, nil
	}
	if err := v.SetNewValue(prepared); err != nil {
		return v.value, err
	}
	return v.value, nil
}

// PrepareNewValue applies the enhancer and equality predicate without
// committing anything. changed is false exactly when the predicate decided
// this write is the UNCHANGED sentinel case named in spec §3.
func (v *ObservableValue[T]) PrepareNewValue(next T) (prepared T, changed bool) {
	enhanced := v.enhancer(next)
	if v.equals(v.value, enhanced) {
		return v.value, false
	}
	return enhanced, true
}

// SetNewValue commits a value already produced by PrepareNewValue and
// broadcasts the change. Fails with STATE_MUTATION_DISALLOWED if called
// outside an action while strict mode is on.
func (v *ObservableValue[T]) SetNewValue(next T) error {
	if err := global.checkMutationAllowed(v.atom); err != nil {
		return err
	}
	v.value = next
	return recoverToError(v.atom.ReportChanged)
}
