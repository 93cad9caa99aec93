package export

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cognicore/deriv/pkg/deriv/heuristic"
	"github.com/cognicore/deriv/pkg/deriv/logic"
	"github.com/cognicore/deriv/pkg/deriv/rulegraph"
	"github.com/cognicore/deriv/pkg/deriv/search"
)

type fakeWriter struct {
	content string
	err     error
}

func (f *fakeWriter) WriteRules(ctx context.Context, content string) error {
	if f.err != nil {
		return f.err
	}
	f.content = content
	return nil
}

func solve(t *testing.T) *search.Result {
	t.Helper()
	rules, err := logic.ParseRules("A -> B\nB -> C | D\nC -> E\n")
	if err != nil {
		t.Fatalf("ParseRules: %v", err)
	}
	e, err := search.New(rules, heuristic.NewFallback(rulegraph.New(rules)), search.Config{StepBudget: 100})
	if err != nil {
		t.Fatalf("search.New: %v", err)
	}
	res, err := e.Run(context.Background(), logic.NewState("A"), logic.NewGoalSet("E"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return res
}

func TestProofExporterWritesReplayableRules(t *testing.T) {
	writer := &fakeWriter{}
	exporter := ProofExporter{Writer: writer}

	if err := exporter.Export(context.Background(), "chain", solve(t)); err != nil {
		t.Fatalf("Export: %v", err)
	}

	if !strings.Contains(writer.content, "[s2] B -> C") {
		t.Fatalf("expected chosen branch only: %s", writer.content)
	}
	if !strings.Contains(writer.content, "# via B -> C | D") {
		t.Fatalf("expected source rule comment: %s", writer.content)
	}

	replay, err := logic.ParseRules(writer.content)
	if err != nil {
		t.Fatalf("exported proof does not parse: %v", err)
	}
	if len(replay) != 3 {
		t.Fatalf("expected 3 replay rules, got %d", len(replay))
	}
	for _, r := range replay {
		if r.IsDisjunctive() {
			t.Errorf("replay rule %s is disjunctive", r)
		}
	}
}

func TestProofExporterRejectsUnsolved(t *testing.T) {
	exporter := ProofExporter{Writer: &fakeWriter{}}
	err := exporter.Export(context.Background(), "x", &search.Result{Status: search.StatusExhausted})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestProofExporterWriterError(t *testing.T) {
	exporter := ProofExporter{Writer: &fakeWriter{err: errors.New("fail")}}
	if err := exporter.Export(context.Background(), "chain", solve(t)); err == nil {
		t.Fatal("expected error")
	}
}

func TestFileWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proof.rules")
	if err := (FileWriter{Path: path}).WriteRules(context.Background(), "A -> B\n"); err != nil {
		t.Fatalf("WriteRules: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "A -> B\n" {
		t.Fatalf("unexpected file content %q", data)
	}
}
