package reactor

import mapset "github.com/deckarep/golang-set/v2"

// SpyEventType enumerates the structured events the introspection channel
// emits (spec §6).
type SpyEventType int

const (
	SpyActionStart SpyEventType = iota
	SpyActionEnd
	SpyObserve
	SpyUpdate
	SpyCompute
	SpyReactionScheduled
	SpyReactionStart
	SpyReactionEnd
	SpyErrorEvent
)

func (t SpyEventType) String() string {
	switch t {
	case SpyActionStart:
		return "action-start"
	case SpyActionEnd:
		return "action-end"
	case SpyObserve:
		return "observe"
	case SpyUpdate:
		return "update"
	case SpyCompute:
		return "compute"
	case SpyReactionScheduled:
		return "reaction-scheduled"
	case SpyReactionStart:
		return "reaction-start"
	case SpyReactionEnd:
		return "reaction-end"
	case SpyErrorEvent:
		return "error"
	default:
		return "unknown"
	}
}

// SpyEvent is one structured notification delivered to every registered
// SpyListener.
type SpyEvent struct {
	Type    SpyEventType
	Name    string
	Changed bool
	Args    []any
	Err     error
}

// SpyListener receives every SpyEvent emitted while it is registered.
type SpyListener func(SpyEvent)

// Spy registers a listener on the process-wide spy channel and returns a
// function that unregisters it. Multiple listeners may be registered at
// once; each receives every event.
func Spy(listener SpyListener) (unsubscribe func()) {
	global.spies = append(global.spies, listener)
	idx := len(global.spies) - 1
	return func() {
		if idx < 0 || idx >= len(global.spies) || global.spies[idx] == nil {
			return
		}
		global.spies[idx] = nil
	}
}

func emitSpy(ev SpyEvent) {
	if len(global.spies) == 0 {
		return
	}
	for _, l := range global.spies {
		if l != nil {
			l(ev)
		}
	}
}

// DependencyKind distinguishes the three node kinds an introspection tree
// can contain.
type DependencyKind int

const (
	KindAtomNode DependencyKind = iota
	KindComputedNode
	KindReactionNode
)

// DependencyNode is one node of a dependency-tree or observer-tree walk
// (spec §6's get-dependency-tree/get-observer-tree).
type DependencyNode struct {
	Name     string
	ID       int64
	Kind     DependencyKind
	Children []*DependencyNode
}

// GetDependencyTree walks what node depends on: for an atom this is
// always empty (atoms have no upstream); for a computed or reaction it
// walks derivationBase.observing. A node already visited anywhere earlier
// in the walk is reported as a childless leaf instead of being walked
// again, guarding
// against the graph ever being mistaken for infinite (the dependency graph
// itself is acyclic by construction — CYCLE_DETECTED prevents the only way
// a cycle could form — but devtools should not assume that).
func GetDependencyTree(node any) *DependencyNode {
	visited := mapset.NewThreadUnsafeSet[int64]()
	return walkDependencyTree(node, visited)
}

func walkDependencyTree(node any, visited mapset.Set[int64]) *DependencyNode {
	n := describeNode(node)
	if n == nil {
		return nil
	}
	if visited.Contains(n.ID) {
		return n
	}
	visited.Add(n.ID)

	b, ok := node.(derivation)
	if !ok {
		return n
	}
	for _, dep := range b.base().observing {
		if child := walkDependencyTree(dep, visited); child != nil {
			n.Children = append(n.Children, child)
		}
	}
	return n
}

// GetObserverTree walks what depends on node: for a reaction this is
// always empty (reactions are terminal); for an atom or computed it walks
// the observer set.
func GetObserverTree(node any) *DependencyNode {
	visited := mapset.NewThreadUnsafeSet[int64]()
	return walkObserverTree(node, visited)
}

func walkObserverTree(node any, visited mapset.Set[int64]) *DependencyNode {
	n := describeNode(node)
	if n == nil {
		return nil
	}
	if visited.Contains(n.ID) {
		return n
	}
	visited.Add(n.ID)

	switch typed := node.(type) {
	case *Atom:
		for _, d := range typed.observers.ToSlice() {
			if child := walkObserverTree(d, visited); child != nil {
				n.Children = append(n.Children, child)
			}
		}
	case hasOwnObservers:
		for _, d := range typed.observersSnapshot() {
			if child := walkObserverTree(d, visited); child != nil {
				n.Children = append(n.Children, child)
			}
		}
	}
	return n
}

func describeNode(node any) *DependencyNode {
	switch typed := node.(type) {
	case *Atom:
		return &DependencyNode{Name: typed.Name(), ID: typed.ID(), Kind: KindAtomNode}
	case observable:
		kind := KindComputedNode
		return &DependencyNode{Name: typed.name(), ID: typed.id(), Kind: kind}
	case *Reaction:
		return &DependencyNode{Name: typed.reactionName, ID: typed.reactionID, Kind: KindReactionNode}
	default:
		return nil
	}
}
