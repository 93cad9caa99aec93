package logic

import (
	"fmt"
	"strings"

	"github.com/cognicore/deriv/pkg/deriv/internalerr"
)

// Conclusion is what a rule adds: either a single atom or a disjunction of
// atoms, each of which starts its own branch.
type Conclusion struct {
	branches []Atom
}

// Single is a deterministic conclusion.
func Single(a Atom) Conclusion {
	return Conclusion{branches: []Atom{a}}
}

// Disjoint is an N-way disjunctive conclusion; order is preserved.
func Disjoint(atoms ...Atom) Conclusion {
	b := make([]Atom, len(atoms))
	copy(b, atoms)
	return Conclusion{branches: b}
}

// Branches returns the conclusion atoms in declaration order.
func (c Conclusion) Branches() []Atom {
	out := make([]Atom, len(c.branches))
	copy(out, c.branches)
	return out
}

// IsDisjunctive reports whether the conclusion has more than one branch.
func (c Conclusion) IsDisjunctive() bool { return len(c.branches) > 1 }

// Rule rewrites a state: when all premises hold, each conclusion branch yields
// one successor with that atom added. Rules are immutable once built.
type Rule struct {
	name        string
	premises    State
	conclusions []Atom
}

// NewRule validates and builds a rule.
func NewRule(name string, premises []Atom, c Conclusion) (*Rule, error) {
	if len(c.branches) == 0 {
		return nil, fmt.Errorf("%w: rule %q has no conclusions", internalerr.ErrMalformedRule, name)
	}
	for _, a := range premises {
		if err := checkAtom(a); err != nil {
			return nil, fmt.Errorf("%w: rule %q premise: %v", internalerr.ErrMalformedRule, name, err)
		}
	}
	for _, a := range c.branches {
		if err := checkAtom(a); err != nil {
			return nil, fmt.Errorf("%w: rule %q conclusion: %v", internalerr.ErrMalformedRule, name, err)
		}
	}
	return &Rule{
		name:        name,
		premises:    NewState(premises...),
		conclusions: c.Branches(),
	}, nil
}

// MustRule is NewRule for rule tables known to be well formed.
func MustRule(name string, premises []Atom, c Conclusion) *Rule {
	r, err := NewRule(name, premises, c)
	if err != nil {
		panic(err)
	}
	return r
}

func checkAtom(a Atom) error {
	if strings.TrimSpace(string(a)) == "" {
		return fmt.Errorf("empty atom")
	}
	if strings.Contains(string(a), keySep) {
		return fmt.Errorf("atom %q contains a reserved separator", a)
	}
	return nil
}

// Name returns the rule name, which may be empty.
func (r *Rule) Name() string { return r.name }

// Premises returns the premise atoms in sorted order.
func (r *Rule) Premises() []Atom { return r.premises.Atoms() }

// Conclusions returns the conclusion branches in declaration order.
func (r *Rule) Conclusions() []Atom {
	out := make([]Atom, len(r.conclusions))
	copy(out, r.conclusions)
	return out
}

// IsDisjunctive reports whether the rule has more than one conclusion.
func (r *Rule) IsDisjunctive() bool { return len(r.conclusions) > 1 }

// Applicable reports whether every premise is in s.
func (r *Rule) Applicable(s State) bool {
	return s.ContainsAll(r.premises)
}

// Apply returns one successor per conclusion, in declaration order, or nil
// when the rule is not applicable. Successors equal to s are kept.
func (r *Rule) Apply(s State) []State {
	if !r.Applicable(s) {
		return nil
	}
	out := make([]State, len(r.conclusions))
	for i, c := range r.conclusions {
		out[i] = s.With(c)
	}
	return out
}

// String renders the rule in the text rule format, e.g. "[r3] C -> D | E".
func (r *Rule) String() string {
	var b strings.Builder
	if r.name != "" {
		b.WriteString("[" + r.name + "] ")
	}
	if r.premises.Len() > 0 {
		b.WriteString(joinAtoms(r.premises.atoms, " & "))
		b.WriteString(" ")
	}
	b.WriteString("-> ")
	b.WriteString(joinAtoms(r.conclusions, " | "))
	return b.String()
}

func joinAtoms(atoms []Atom, sep string) string {
	parts := make([]string, len(atoms))
	for i, a := range atoms {
		parts[i] = string(a)
	}
	return strings.Join(parts, sep)
}
