package maintenance

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/cognicore/deriv/pkg/deriv/logic"
	"github.com/cognicore/deriv/pkg/deriv/store"
)

// StatusStale marks a recorded proof that no longer replays under the
// current rules.
const StatusStale = "stale"

// RunSource abstracts how we iterate recorded runs.
type RunSource interface {
	Next(ctx context.Context) (store.Run, bool, error)
}

// Verifier replays recorded proofs after rule-set updates. Proofs that no
// longer hold are re-marked stale in Store when one is set.
type Verifier struct {
	Rules  []*logic.Rule
	Source RunSource
	Store  store.Store
}

// Result summarizes the verification run.
type Result struct {
	Processed int
	Valid     int
	Stale     int
	Skipped   int // runs that never found a proof
	Errors    int
}

// Verify replays every run from the source.
func (v *Verifier) Verify(ctx context.Context) (Result, error) {
	var res Result
	if v.Source == nil {
		return res, errors.New("verifier: invalid configuration")
	}

	byText := make(map[string]*logic.Rule, len(v.Rules))
	for _, r := range v.Rules {
		byText[r.String()] = r
	}

	for {
		run, ok, err := v.Source.Next(ctx)
		if err != nil {
			return res, fmt.Errorf("verifier: %w", err)
		}
		if !ok {
			break
		}
		res.Processed++

		if run.Status != "succeeded" {
			res.Skipped++
			continue
		}
		if err := Replay(byText, run); err == nil {
			res.Valid++
			continue
		}
		res.Stale++

		if v.Store == nil {
			continue
		}
		run.Status = StatusStale
		if err := v.Store.PutRun(ctx, run); err != nil {
			res.Errors++
		}
	}
	return res, nil
}

// Replay checks that the recorded steps derive the recorded final state with
// the given rules, keyed by their text form. The initial facts are the final
// facts minus everything the steps added.
func Replay(rules map[string]*logic.Rule, run store.Run) error {
	added := make([]string, len(run.Steps))
	for i, step := range run.Steps {
		added[i] = step.Added
	}

	var initial []logic.Atom
	for _, a := range run.Final {
		if !slices.Contains(added, a) {
			initial = append(initial, logic.Atom(a))
		}
	}
	final := make([]logic.Atom, len(run.Final))
	for i, a := range run.Final {
		final[i] = logic.Atom(a)
	}

	state := logic.NewState(initial...)
	for i, step := range run.Steps {
		r, ok := rules[step.Rule]
		if !ok {
			return fmt.Errorf("step %d: rule %q no longer exists", i+1, step.Rule)
		}
		if !r.Applicable(state) {
			return fmt.Errorf("step %d: %s not applicable to %s", i+1, r, state)
		}
		atom := logic.Atom(step.Added)
		if !slices.Contains(r.Conclusions(), atom) {
			return fmt.Errorf("step %d: %s cannot conclude %s", i+1, r, atom)
		}
		if state.Contains(atom) {
			return fmt.Errorf("step %d: %s already known", i+1, atom)
		}
		state = state.With(atom)
	}
	if !state.Equal(logic.NewState(final...)) {
		return fmt.Errorf("replayed state %s differs from recorded final state", state)
	}
	return nil
}

// StoreSource iterates the most recent runs of a store.
type StoreSource struct {
	Store store.Store
	Limit int

	runs   []store.Run
	loaded bool
	idx    int
}

func (s *StoreSource) Next(ctx context.Context) (store.Run, bool, error) {
	if !s.loaded {
		runs, err := s.Store.ListRuns(ctx, s.Limit)
		if err != nil {
			return store.Run{}, false, err
		}
		s.runs, s.loaded = runs, true
	}
	if s.idx >= len(s.runs) {
		return store.Run{}, false, nil
	}
	run := s.runs[s.idx]
	s.idx++
	return run, true, nil
}
