package reactor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservableValueSetIsNoOpUnderDefaultEquals(t *testing.T) {
	ResetGlobalState()
	v := NewObservableValue("v", 1, nil, nil)

	var notifications int
	unsub := Spy(func(ev SpyEvent) {
		if ev.Type == SpyUpdate {
			notifications++
		}
	})
	defer unsub()

	AllowStateChanges(true, func() any {
		_, err := v.Set(1)
		require.NoError(t, err)
		return nil
	})
	assert.Equal(t, 0, notifications, "setting the same value is UNCHANGED, no broadcast")

	AllowStateChanges(true, func() any {
		_, err := v.Set(2)
		require.NoError(t, err)
		return nil
	})
	assert.Equal(t, 1, notifications)
}

func TestObservableValueNaNCollapse(t *testing.T) {
	ResetGlobalState()
	v := NewObservableValue("v", math.NaN(), nil, nil)

	_, changed := v.PrepareNewValue(math.NaN())
	assert.False(t, changed, "two NaNs should collapse to UNCHANGED, not loop forever")
}

func TestObservableValueStructuralEquals(t *testing.T) {
	ResetGlobalState()
	v := NewObservableValue("v", []int{1, 2}, Structural[[]int], nil)

	_, changed := v.PrepareNewValue([]int{1, 2})
	assert.False(t, changed)

	_, changed = v.PrepareNewValue([]int{1, 3})
	assert.True(t, changed)
}

func TestObservableValueMutationDisallowedOutsideAction(t *testing.T) {
	ResetGlobalState()
	v := NewObservableValue("v", 1, nil, nil)

	_, err := v.Set(2)
	require.Error(t, err)
	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, KindStateMutationDisallowed, rerr.Kind)
}

func TestObservableValueEnhancer(t *testing.T) {
	ResetGlobalState()
	double := func(next int) int { return next * 2 }
	v := NewObservableValue("v", 5, nil, double)
	assert.Equal(t, 10, v.Get())

	AllowStateChanges(true, func() any {
		got, err := v.Set(3)
		require.NoError(t, err)
		assert.Equal(t, 6, got)
		return nil
	})
}
