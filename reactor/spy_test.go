package reactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpyReceivesComputeAndUpdateEvents(t *testing.T) {
	ResetGlobalState()
	a := NewObservableValue("a", 1, nil, nil)
	c := NewComputed("c", func() int { return a.Get() * 2 }, nil)

	var types []SpyEventType
	unsub := Spy(func(ev SpyEvent) { types = append(types, ev.Type) })
	defer unsub()

	_, err := c.Get()
	require.NoError(t, err)
	assert.Contains(t, types, SpyCompute)

	AllowStateChanges(true, func() any {
		_, err := a.Set(5)
		require.NoError(t, err)
		return nil
	})
	assert.Contains(t, types, SpyUpdate)
}

func TestSpyReceivesObserveEventOnBind(t *testing.T) {
	ResetGlobalState()
	a := NewAtom("a", nil, nil)

	var names []string
	unsub := Spy(func(ev SpyEvent) {
		if ev.Type == SpyObserve {
			names = append(names, ev.Name)
		}
	})
	defer unsub()

	r := NewReaction("r", nil)
	r.Track(func() {
		a.ReportObserved()
	})

	assert.Contains(t, names, "a")
}

func TestSpyUnsubscribeStopsDelivery(t *testing.T) {
	ResetGlobalState()
	a := NewObservableValue("a", 1, nil, nil)

	var count int
	unsub := Spy(func(ev SpyEvent) { count++ })
	unsub()

	AllowStateChanges(true, func() any {
		_, err := a.Set(2)
		require.NoError(t, err)
		return nil
	})
	assert.Equal(t, 0, count)
}

func TestGetDependencyTreeWalksObservingSet(t *testing.T) {
	ResetGlobalState()
	a := NewAtom("a", nil, nil)
	c := NewComputed("c", func() int {
		a.ReportObserved()
		return 1
	}, nil)
	_, err := c.Get()
	require.NoError(t, err)

	// Force a hot bind so c.observing actually contains a.
	r := NewReaction("r", nil)
	r.Track(func() {
		_, err := c.Get()
		require.NoError(t, err)
	})

	tree := GetDependencyTree(c)
	require.NotNil(t, tree)
	assert.Equal(t, "c", tree.Name)
	require.Len(t, tree.Children, 1)
	assert.Equal(t, "a", tree.Children[0].Name)
	assert.Equal(t, KindAtomNode, tree.Children[0].Kind)
}

func TestGetObserverTreeWalksObserverSet(t *testing.T) {
	ResetGlobalState()
	a := NewAtom("a", nil, nil)
	r := NewReaction("r", nil)
	r.Track(func() {
		a.ReportObserved()
	})

	tree := GetObserverTree(a)
	require.NotNil(t, tree)
	require.Len(t, tree.Children, 1)
	assert.Equal(t, "r", tree.Children[0].Name)
	assert.Equal(t, KindReactionNode, tree.Children[0].Kind)
}
