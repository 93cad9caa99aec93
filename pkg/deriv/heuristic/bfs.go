package heuristic

import (
	"context"

	"github.com/cognicore/deriv/pkg/deriv/logic"
	"github.com/cognicore/deriv/pkg/deriv/rulegraph"
)

// Fallback is the structural estimator: breadth-first distance in the rule
// graph from the atoms of a state to the nearest goal atom.
//
// Every edge in the graph stands for at least one rule application, so the
// distance never overestimates the remaining derivation length.
type Fallback struct {
	graph *rulegraph.Graph
}

// NewFallback wraps a rule graph.
func NewFallback(g *rulegraph.Graph) *Fallback {
	return &Fallback{graph: g}
}

// Estimate implements Estimator.
func (f *Fallback) Estimate(_ context.Context, s logic.State, goals logic.GoalSet) float64 {
	return f.Distance(s, goals)
}

// Distance returns 0 when s already holds a goal atom, the BFS depth of the
// first goal atom dequeued otherwise, or Unreachable.
func (f *Fallback) Distance(s logic.State, goals logic.GoalSet) float64 {
	if goals.SatisfiedBy(s) {
		return 0
	}

	type item struct {
		atom  logic.Atom
		depth int
	}

	atoms := s.Atoms()
	visited := make(map[logic.Atom]bool, len(atoms))
	queue := make([]item, 0, len(atoms))
	for _, a := range atoms {
		visited[a] = true
		if f.graph.Has(a) {
			queue = append(queue, item{atom: a})
		}
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if goals.Contains(cur.atom) {
			return float64(cur.depth)
		}
		for _, next := range f.graph.Neighbors(cur.atom) {
			if visited[next] {
				continue
			}
			visited[next] = true
			queue = append(queue, item{atom: next, depth: cur.depth + 1})
		}
	}
	return Unreachable
}
