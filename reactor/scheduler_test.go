package reactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionBatchesReactionSideEffects(t *testing.T) {
	// Spec §8 scenario 3 / property P6.
	ResetGlobalState()
	a := NewObservableValue("a", 1, nil, nil)
	b := NewObservableValue("b", 2, nil, nil)
	var runs []int

	Autorun("sum", func() {
		runs = append(runs, a.Get()+b.Get())
	})
	assert.Equal(t, []int{3}, runs)

	Transaction(func() {
		AllowStateChanges(true, func() any {
			_, err := a.Set(10)
			require.NoError(t, err)
			_, err = b.Set(20)
			require.NoError(t, err)
			return nil
		})
		assert.Equal(t, []int{3}, runs, "reaction must not fire before the transaction ends")
	})

	assert.Equal(t, []int{3, 30}, runs, "exactly one combined update after the batch closes")
}

func TestNestedTransactionsDeferUntilOutermostReturns(t *testing.T) {
	ResetGlobalState()
	a := NewObservableValue("a", 1, nil, nil)
	var runs []int
	Autorun("r", func() { runs = append(runs, a.Get()) })
	assert.Equal(t, []int{1}, runs)

	Transaction(func() {
		Transaction(func() {
			AllowStateChanges(true, func() any {
				_, err := a.Set(2)
				require.NoError(t, err)
				return nil
			})
			assert.Equal(t, []int{1}, runs)
		})
		assert.Equal(t, []int{1}, runs, "inner transaction closing must not drain while outer is still open")
	})
	assert.Equal(t, []int{1, 2}, runs)
}

func TestDiamondDependencyRecomputesOnce(t *testing.T) {
	// Spec §8 scenario 2 / property P3: c1, c2 both derive from x; r depends
	// on both. Writing x must cause r to recompute exactly once, never
	// observing a torn state where c1 and c2 disagree about x.
	ResetGlobalState()
	x := NewObservableValue("x", 1, nil, nil)
	c1 := NewComputed("c1", func() int { return x.Get() * 2 }, nil)
	c2 := NewComputed("c2", func() int { return x.Get() + 1 }, nil)
	r := NewComputed("r", func() int {
		v1, _ := c1.Get()
		v2, _ := c2.Get()
		return v1 + v2
	}, nil)

	var runs int
	var log []int
	Autorun("logr", func() {
		v, err := r.Get()
		require.NoError(t, err)
		log = append(log, v)
		runs++
	})
	assert.Equal(t, []int{4}, log)
	assert.Equal(t, 1, runs)

	AllowStateChanges(true, func() any {
		_, err := x.Set(2)
		require.NoError(t, err)
		return nil
	})
	assert.Equal(t, []int{4, 7}, log)
	assert.Equal(t, 2, runs, "r must recompute exactly once for a single write to x")
}

func TestActionReportsSpyStartEndAroundMutation(t *testing.T) {
	ResetGlobalState()
	a := NewObservableValue("a", 1, nil, nil)

	var seen []SpyEventType
	unsub := Spy(func(ev SpyEvent) { seen = append(seen, ev.Type) })
	defer unsub()

	_, err := ActionNamed("bump", func() (struct{}, error) {
		_, serr := a.Set(2)
		return struct{}{}, serr
	})
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(seen), 2)
	assert.Equal(t, SpyActionStart, seen[0])
	assert.Equal(t, SpyActionEnd, seen[len(seen)-1])
}

func TestUntrackedSuppressesBindingInsideTrackedDerivation(t *testing.T) {
	// Property P4.
	ResetGlobalState()
	tracked := NewAtom("tracked", nil, nil)
	untracked := NewAtom("untracked", nil, nil)

	r := NewReaction("r", nil)
	r.Track(func() {
		tracked.ReportObserved()
		Untracked(func() any {
			untracked.ReportObserved()
			return nil
		})
	})

	assert.Equal(t, 1, tracked.ObserverCount())
	assert.Equal(t, 0, untracked.ObserverCount())
}
