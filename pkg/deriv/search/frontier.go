package search

import (
	"container/heap"

	"github.com/cognicore/deriv/pkg/deriv/logic"
)

// Entry is one pending state on the frontier.
type Entry struct {
	F     float64 // G + estimate
	G     int     // rule applications so far
	Seq   uint64  // push order, breaks remaining ties
	State logic.State
	path  *pathNode
}

// pathNode is one step of a derivation. Entries share their prefixes.
type pathNode struct {
	rule   *logic.Rule
	branch logic.Atom
	parent *pathNode
	depth  int
}

func (p *pathNode) extend(r *logic.Rule, branch logic.Atom) *pathNode {
	depth := 1
	if p != nil {
		depth = p.depth + 1
	}
	return &pathNode{rule: r, branch: branch, parent: p, depth: depth}
}

// steps returns the path from the initial state onward.
func (p *pathNode) steps() []Step {
	if p == nil {
		return nil
	}
	out := make([]Step, p.depth)
	for n := p; n != nil; n = n.parent {
		out[n.depth-1] = Step{Rule: n.rule, Added: n.branch}
	}
	return out
}

// entryHeap implements heap.Interface ordered by (f, g, seq) ascending.
type entryHeap []*Entry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if a.F != b.F {
		return a.F < b.F
	}
	if a.G != b.G {
		return a.G < b.G
	}
	return a.Seq < b.Seq
}

func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x any) { *h = append(*h, x.(*Entry)) }

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// Frontier is the open set. Sequence numbers are assigned by the owner.
type Frontier struct {
	h entryHeap
}

// Push adds an entry.
func (f *Frontier) Push(e *Entry) { heap.Push(&f.h, e) }

// PopMin removes and returns the lowest (f, g, seq) entry, or nil when empty.
func (f *Frontier) PopMin() *Entry {
	if len(f.h) == 0 {
		return nil
	}
	return heap.Pop(&f.h).(*Entry)
}

// Len returns the number of pending entries, duplicates included.
func (f *Frontier) Len() int { return len(f.h) }
