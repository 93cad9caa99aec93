package saturate

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cognicore/deriv/pkg/deriv/internalerr"
	"github.com/cognicore/deriv/pkg/deriv/logic"
)

func TestRunReachesFixedPoint(t *testing.T) {
	rules, err := logic.ParseRules("A -> B\nB -> C\nC -> D | E\nA & C -> Z\n")
	if err != nil {
		t.Fatalf("ParseRules: %v", err)
	}

	got, rounds, err := Run(context.Background(), logic.NewState("A"), FromRules(rules), 10)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if diff := cmp.Diff([]logic.Atom{"A", "B", "C", "Z"}, got.Atoms()); diff != "" {
		t.Errorf("facts (-want +got):\n%s", diff)
	}
	// B, then C, then Z
	if rounds != 3 {
		t.Errorf("rounds = %d, want 3", rounds)
	}
}

func TestRunStopsAtDepthCap(t *testing.T) {
	n := 0
	counter := func(logic.State) []logic.Atom {
		n++
		return []logic.Atom{logic.Atom(rune('a' + n))}
	}

	got, rounds, err := Run(context.Background(), logic.NewState(), []Axiom{counter}, 4)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rounds != 4 || got.Len() != 4 {
		t.Fatalf("expected 4 rounds and 4 facts, got %d and %v", rounds, got)
	}
}

func TestRunRejectsNonPositiveDepth(t *testing.T) {
	_, _, err := Run(context.Background(), logic.NewState("A"), nil, 0)
	if !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}
