// Package saturate applies axioms to a fact set until nothing new is derived.
//
// It is the non-branching companion to search: every axiom runs against the
// whole fact set each round and everything it yields is kept.
package saturate

import (
	"context"
	"fmt"

	"github.com/cognicore/deriv/pkg/deriv/internalerr"
	"github.com/cognicore/deriv/pkg/deriv/logic"
)

// Axiom derives new atoms from the current facts.
type Axiom func(facts logic.State) []logic.Atom

// Run applies every axiom per round until a round adds nothing or maxDepth
// rounds have run. It returns the saturated facts and the rounds used.
func Run(ctx context.Context, facts logic.State, axioms []Axiom, maxDepth int) (logic.State, int, error) {
	if maxDepth <= 0 {
		return facts, 0, fmt.Errorf("%w: max depth must be positive, got %d", internalerr.ErrInvalidConfig, maxDepth)
	}

	for round := 1; round <= maxDepth; round++ {
		if err := ctx.Err(); err != nil {
			return facts, round - 1, err
		}

		next := facts
		for _, ax := range axioms {
			for _, a := range ax(facts) {
				next = next.With(a)
			}
		}
		if next.Equal(facts) {
			return facts, round - 1, nil
		}
		facts = next
	}
	return facts, maxDepth, nil
}

// FromRules turns deterministic rules into axioms. Disjunctive rules have no
// single consequence and are skipped.
func FromRules(rules []*logic.Rule) []Axiom {
	var out []Axiom
	for _, r := range rules {
		if r.IsDisjunctive() {
			continue
		}
		r := r
		conclusion := r.Conclusions()[0]
		out = append(out, func(facts logic.State) []logic.Atom {
			if r.Applicable(facts) {
				return []logic.Atom{conclusion}
			}
			return nil
		})
	}
	return out
}
