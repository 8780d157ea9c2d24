// Package reactor is a transparent functional-reactive dependency-tracking
// engine: atoms hold mutable leaf state, computed values derive from atoms
// and other computed values, and reactions observe the graph for effects.
//
// Writing an atom never recomputes anything directly. It marks the
// downstream graph stale, waits for every affected dependency to settle,
// and only then lets computed values revalidate and reactions run — once
// per change, never on a partially-updated ("glitched") view of the graph.
package reactor
