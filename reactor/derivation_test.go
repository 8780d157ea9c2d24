package reactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackDerivedFunctionRollsBackObservingOnPanic(t *testing.T) {
	ResetGlobalState()
	a := NewAtom("a", nil, nil)
	b := NewAtom("b", nil, nil)

	r := NewReaction("r", nil)
	r.Track(func() {
		a.ReportObserved()
	})
	assert.True(t, a.observers.Contains(r))

	assert.Panics(t, func() {
		r.Track(func() {
			b.ReportObserved()
			panic("boom")
		})
	})

	// The failed run must not have left b bound, and must not have dropped
	// a's binding either — observing rolls back to exactly what it was
	// before the panicking run started.
	assert.True(t, a.observers.Contains(r))
	assert.False(t, b.observers.Contains(r))
	assert.False(t, global.tracking)
	assert.Empty(t, global.derivationStack)
}

func TestBindUnbindDiffLeavesDiffValuesAtZero(t *testing.T) {
	ResetGlobalState()
	a := NewAtom("a", nil, nil)
	b := NewAtom("b", nil, nil)

	r := NewReaction("r", nil)
	r.Track(func() {
		a.ReportObserved()
		b.ReportObserved()
	})
	assert.Equal(t, 0, a.diffValue())
	assert.Equal(t, 0, b.diffValue())

	r.Track(func() {
		a.ReportObserved()
	})
	assert.Equal(t, 0, a.diffValue())
	assert.Equal(t, 0, b.diffValue())
}

func TestDuplicateReadsWithinARunAreDeduplicated(t *testing.T) {
	ResetGlobalState()
	a := NewAtom("a", nil, nil)

	r := NewReaction("r", nil)
	r.Track(func() {
		a.ReportObserved()
		a.ReportObserved()
		a.ReportObserved()
	})

	assert.Equal(t, 1, a.ObserverCount())
}
