// Package logic holds the value types of a derivation: atoms, fact states,
// disjunctive rules and goal sets.
package logic

import (
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Atom is an opaque fact identifier such as "A" or "Parent(ann,bob)".
// The search engine never looks inside it.
type Atom string

// keySep cannot appear in a well-formed atom, so keys of distinct states never collide.
const keySep = "\x1f"

var emptyHash = xxhash.Sum64String("")

// State is an immutable set of atoms.
//
// Atoms are kept sorted and unique, so two states built from the same atoms in
// any order are Equal and share the same Key and Hash. Every operation that
// "adds" to a State returns a new value; the receiver is never modified.
type State struct {
	atoms []Atom
	key   string
	hash  uint64
}

// NewState builds a state from atoms, dropping duplicates and empty atoms.
func NewState(atoms ...Atom) State {
	set := make([]Atom, 0, len(atoms))
	for _, a := range atoms {
		if a != "" {
			set = append(set, a)
		}
	}
	sort.Slice(set, func(i, j int) bool { return set[i] < set[j] })
	set = compact(set)
	return seal(set)
}

func compact(sorted []Atom) []Atom {
	if len(sorted) < 2 {
		return sorted
	}
	out := sorted[:1]
	for _, a := range sorted[1:] {
		if a != out[len(out)-1] {
			out = append(out, a)
		}
	}
	return out
}

func seal(sorted []Atom) State {
	parts := make([]string, len(sorted))
	for i, a := range sorted {
		parts[i] = string(a)
	}
	key := strings.Join(parts, keySep)
	return State{atoms: sorted, key: key, hash: xxhash.Sum64String(key)}
}

// With returns a state holding every atom of s plus a.
// If a is already present, s itself is returned.
func (s State) With(a Atom) State {
	if a == "" {
		return s
	}
	i := sort.Search(len(s.atoms), func(i int) bool { return s.atoms[i] >= a })
	if i < len(s.atoms) && s.atoms[i] == a {
		return s
	}
	next := make([]Atom, 0, len(s.atoms)+1)
	next = append(next, s.atoms[:i]...)
	next = append(next, a)
	next = append(next, s.atoms[i:]...)
	return seal(next)
}

// Contains reports whether a is a member of s.
func (s State) Contains(a Atom) bool {
	i := sort.Search(len(s.atoms), func(i int) bool { return s.atoms[i] >= a })
	return i < len(s.atoms) && s.atoms[i] == a
}

// ContainsAll reports whether every atom of other is in s.
func (s State) ContainsAll(other State) bool {
	if other.Len() > s.Len() {
		return false
	}
	// both sides are sorted: a single merge pass is enough
	i := 0
	for _, a := range other.atoms {
		for i < len(s.atoms) && s.atoms[i] < a {
			i++
		}
		if i == len(s.atoms) || s.atoms[i] != a {
			return false
		}
		i++
	}
	return true
}

// Intersects reports whether s holds at least one atom of goals.
func (s State) Intersects(goals GoalSet) bool {
	small, large := goals.set, s
	if small.Len() > large.Len() {
		small, large = large, small
	}
	for _, a := range small.atoms {
		if large.Contains(a) {
			return true
		}
	}
	return false
}

// Atoms returns a sorted copy of the atoms in s.
func (s State) Atoms() []Atom {
	out := make([]Atom, len(s.atoms))
	copy(out, s.atoms)
	return out
}

// Len returns the number of atoms.
func (s State) Len() int { return len(s.atoms) }

// Equal compares states by content.
func (s State) Equal(other State) bool {
	return len(s.atoms) == len(other.atoms) && s.key == other.key
}

// Key is a canonical encoding of the atom set, usable as a map key.
func (s State) Key() string { return s.key }

// Hash is the xxhash of Key. The zero State hashes like NewState().
func (s State) Hash() uint64 {
	if len(s.atoms) == 0 {
		return emptyHash
	}
	return s.hash
}

func (s State) String() string {
	parts := make([]string, len(s.atoms))
	for i, a := range s.atoms {
		parts[i] = string(a)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// GoalSet is a disjunctive goal: any one of its atoms satisfies it.
type GoalSet struct {
	set State
}

// NewGoalSet builds a goal set from atoms.
func NewGoalSet(atoms ...Atom) GoalSet {
	return GoalSet{set: NewState(atoms...)}
}

// Contains reports whether a is a goal atom.
func (g GoalSet) Contains(a Atom) bool { return g.set.Contains(a) }

// SatisfiedBy reports whether s holds at least one goal atom.
func (g GoalSet) SatisfiedBy(s State) bool { return s.Intersects(g) }

// Atoms returns the goal atoms in sorted order.
func (g GoalSet) Atoms() []Atom { return g.set.Atoms() }

// Len returns the number of goal atoms.
func (g GoalSet) Len() int { return g.set.Len() }

// Key is a canonical encoding of the goal atoms.
func (g GoalSet) Key() string { return g.set.Key() }

func (g GoalSet) String() string { return g.set.String() }
