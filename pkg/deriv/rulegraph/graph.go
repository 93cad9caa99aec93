// Package rulegraph builds a coarse atom adjacency from a rule set.
package rulegraph

import "github.com/cognicore/deriv/pkg/deriv/logic"

// Graph maps every premise atom to the conclusion atoms of rules it appears in.
//
// It ignores the conjunction over premises, so it over-approximates what is
// actually derivable. That is fine for a distance estimate and wrong for
// anything else.
type Graph struct {
	edges map[logic.Atom][]logic.Atom
	edgeN int
}

// New builds the graph once for a rule set. The result is read-only.
func New(rules []*logic.Rule) *Graph {
	g := &Graph{edges: make(map[logic.Atom][]logic.Atom)}
	seen := make(map[[2]logic.Atom]bool)

	for _, r := range rules {
		conclusions := r.Conclusions()
		for _, p := range r.Premises() {
			for _, c := range conclusions {
				edge := [2]logic.Atom{p, c}
				if seen[edge] {
					continue
				}
				seen[edge] = true
				g.edges[p] = append(g.edges[p], c)
				g.edgeN++
			}
		}
	}
	return g
}

// Neighbors returns the atoms reachable from a in one rule application,
// in the order the edges were first seen.
func (g *Graph) Neighbors(a logic.Atom) []logic.Atom {
	return g.edges[a]
}

// Has reports whether a has outgoing edges.
func (g *Graph) Has(a logic.Atom) bool {
	_, ok := g.edges[a]
	return ok
}

// Len returns the number of atoms with outgoing edges.
func (g *Graph) Len() int { return len(g.edges) }

// Edges returns the number of distinct edges.
func (g *Graph) Edges() int { return g.edgeN }
