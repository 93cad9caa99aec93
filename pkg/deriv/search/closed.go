package search

import "github.com/cognicore/deriv/pkg/deriv/logic"

// ClosedSet records expanded states. Buckets are keyed by the structural
// hash; equality inside a bucket is by content.
type ClosedSet struct {
	buckets map[uint64][]logic.State
	n       int
}

// NewClosedSet returns an empty set.
func NewClosedSet() *ClosedSet {
	return &ClosedSet{buckets: make(map[uint64][]logic.State)}
}

// Contains reports whether s was added before.
func (c *ClosedSet) Contains(s logic.State) bool {
	for _, other := range c.buckets[s.Hash()] {
		if other.Equal(s) {
			return true
		}
	}
	return false
}

// Add inserts s and reports whether it was new.
func (c *ClosedSet) Add(s logic.State) bool {
	if c.Contains(s) {
		return false
	}
	h := s.Hash()
	c.buckets[h] = append(c.buckets[h], s)
	c.n++
	return true
}

// Len returns the number of distinct states.
func (c *ClosedSet) Len() int { return c.n }
