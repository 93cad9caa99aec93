package search

import (
	"math"
	"testing"

	"github.com/cognicore/deriv/pkg/deriv/logic"
)

func TestFrontierOrdersByFThenGThenSeq(t *testing.T) {
	var f Frontier
	f.Push(&Entry{F: 3, G: 1, Seq: 1})
	f.Push(&Entry{F: 2, G: 2, Seq: 2})
	f.Push(&Entry{F: 2, G: 1, Seq: 3})
	f.Push(&Entry{F: math.Inf(1), G: 0, Seq: 4})
	f.Push(&Entry{F: 2, G: 1, Seq: 5})

	want := []uint64{3, 5, 2, 1, 4}
	for i, seq := range want {
		e := f.PopMin()
		if e == nil {
			t.Fatalf("pop %d: frontier empty", i)
		}
		if e.Seq != seq {
			t.Errorf("pop %d: got seq %d, want %d", i, e.Seq, seq)
		}
	}
	if f.PopMin() != nil {
		t.Error("expected empty frontier")
	}
}

func TestPathStepsShareParents(t *testing.T) {
	r1 := logic.MustRule("r1", []logic.Atom{"A"}, logic.Single("B"))
	r2 := logic.MustRule("r2", []logic.Atom{"B"}, logic.Disjoint("C", "D"))

	var root *pathNode
	mid := root.extend(r1, "B")
	left := mid.extend(r2, "C")
	right := mid.extend(r2, "D")

	ls, rs := left.steps(), right.steps()
	if len(ls) != 2 || len(rs) != 2 {
		t.Fatalf("expected two steps each, got %d and %d", len(ls), len(rs))
	}
	if ls[0].Rule != r1 || ls[1].Added != "C" || rs[1].Added != "D" {
		t.Errorf("unexpected steps: %+v / %+v", ls, rs)
	}
	if root.steps() != nil {
		t.Error("empty path should have no steps")
	}
}
