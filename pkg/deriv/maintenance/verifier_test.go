package maintenance

import (
	"context"
	"errors"
	"testing"

	"github.com/cognicore/deriv/pkg/deriv/logic"
	"github.com/cognicore/deriv/pkg/deriv/store"
	"github.com/cognicore/deriv/pkg/deriv/store/memstore"
)

type fakeSource struct {
	runs []store.Run
	idx  int
	err  error
}

func (f *fakeSource) Next(ctx context.Context) (store.Run, bool, error) {
	if f.err != nil {
		return store.Run{}, false, f.err
	}
	if f.idx >= len(f.runs) {
		return store.Run{}, false, nil
	}
	run := f.runs[f.idx]
	f.idx++
	return run, true, nil
}

type failingStore struct {
	*memstore.Store
}

func (f failingStore) PutRun(ctx context.Context, r store.Run) error {
	return errors.New("boom")
}

func mustRules(t *testing.T, text string) []*logic.Rule {
	t.Helper()
	rules, err := logic.ParseRules(text)
	if err != nil {
		t.Fatalf("ParseRules: %v", err)
	}
	return rules
}

func recordedRun(id string) store.Run {
	return store.Run{
		ID:     id,
		Status: "succeeded",
		Steps: []store.Step{
			{Rule: "A -> B", Added: "B"},
			{Rule: "B -> C | D", Added: "D"},
		},
		Final: []string{"A", "B", "D"},
	}
}

func TestVerifierKeepsValidProofs(t *testing.T) {
	v := Verifier{
		Rules: mustRules(t, "A -> B\nB -> C | D\n"),
		Source: &fakeSource{runs: []store.Run{
			recordedRun("1"),
			{ID: "2", Status: "exhausted"},
		}},
	}

	res, err := v.Verify(context.Background())
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if res.Processed != 2 || res.Valid != 1 || res.Skipped != 1 || res.Stale != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestVerifierMarksStaleProofs(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	run := recordedRun("01J0000000000000000000000A")
	if err := st.PutRun(ctx, run); err != nil {
		t.Fatalf("PutRun: %v", err)
	}

	// the disjunction lost its D branch
	v := Verifier{
		Rules:  mustRules(t, "A -> B\nB -> C\n"),
		Source: &StoreSource{Store: st, Limit: 10},
		Store:  st,
	}
	res, err := v.Verify(ctx)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if res.Stale != 1 {
		t.Fatalf("expected a stale proof, got %+v", res)
	}

	got, err := st.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Status != StatusStale {
		t.Fatalf("status = %s, want %s", got.Status, StatusStale)
	}
}

func TestVerifierHandlesStoreErrors(t *testing.T) {
	v := Verifier{
		Rules:  nil,
		Source: &fakeSource{runs: []store.Run{recordedRun("1")}},
		Store:  failingStore{memstore.New()},
	}

	res, err := v.Verify(context.Background())
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if res.Stale != 1 || res.Errors != 1 {
		t.Fatalf("expected error count, got %+v", res)
	}
}

func TestVerifierSourceError(t *testing.T) {
	v := Verifier{Source: &fakeSource{err: errors.New("disk gone")}}
	if _, err := v.Verify(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestReplayRejectsTamperedRuns(t *testing.T) {
	rules := map[string]*logic.Rule{}
	for _, r := range mustRules(t, "A -> B\nB -> C | D\n") {
		rules[r.String()] = r
	}

	if err := Replay(rules, recordedRun("ok")); err != nil {
		t.Fatalf("Replay: %v", err)
	}

	outOfOrder := recordedRun("order")
	outOfOrder.Steps[0], outOfOrder.Steps[1] = outOfOrder.Steps[1], outOfOrder.Steps[0]
	if err := Replay(rules, outOfOrder); err == nil {
		t.Error("expected error for steps applied out of order")
	}

	wrongBranch := recordedRun("branch")
	wrongBranch.Steps[1].Added = "E"
	wrongBranch.Final = []string{"A", "B", "E"}
	if err := Replay(rules, wrongBranch); err == nil {
		t.Error("expected error for a branch the rule does not offer")
	}
}
