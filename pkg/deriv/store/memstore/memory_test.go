package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/cognicore/deriv/pkg/deriv/internalerr"
	"github.com/cognicore/deriv/pkg/deriv/store"
)

func TestPutAndGetRun(t *testing.T) {
	ctx := context.Background()
	s := New()

	run := store.Run{
		ID:     "01J0000000000000000000000A",
		Status: "succeeded",
		Steps:  []store.Step{{Rule: "A -> B", Added: "B"}},
		Final:  []string{"A", "B"},
	}
	if err := s.PutRun(ctx, run); err != nil {
		t.Fatalf("PutRun: %v", err)
	}

	run.Final[0] = "mutated"
	got, err := s.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Final[0] != "A" {
		t.Error("store should keep its own copy of the run")
	}
}

func TestGetRunNotFound(t *testing.T) {
	_, err := New().GetRun(context.Background(), "missing")
	if !errors.Is(err, internalerr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPutRunRequiresID(t *testing.T) {
	err := New().PutRun(context.Background(), store.Run{})
	if !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, id := range []string{"01A", "01C", "01B"} {
		if err := s.PutRun(ctx, store.Run{ID: id}); err != nil {
			t.Fatalf("PutRun: %v", err)
		}
	}

	runs, err := s.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "01C" || runs[1].ID != "01B" {
		t.Fatalf("unexpected order: %+v", runs)
	}
}
