package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cognicore/deriv/pkg/deriv/config"
	"github.com/cognicore/deriv/pkg/deriv/logic"
)

const problemYAML = `name: decoys
step_budget: 10000
initial: [A]
goals: [F, G]
rules:
  - premises: [A]
    conclusion: B
  - premises: [B]
    conclusion: C
  - premises: [C]
    conclusion: [D, E]
  - premises: [D]
    conclusion: F
  - premises: [E]
    conclusion: G
  - premises: [A]
    conclusion: H
  - premises: [H]
    conclusion: I
`

func writeProblem(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "problem.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write problem: %v", err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestProveCommand(t *testing.T) {
	problem := writeProblem(t, problemYAML)
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "runs.db")
	exportPath := filepath.Join(dir, "proof.rules")

	out, err := execute(t, "prove", problem, "--db", dbPath, "--export", exportPath)
	if err != nil {
		t.Fatalf("prove: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Proof found in 4 steps.") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if !strings.Contains(out, "recorded.") {
		t.Errorf("expected run id in output:\n%s", out)
	}

	data, err := os.ReadFile(exportPath)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	replay, err := logic.ParseRules(string(data))
	if err != nil {
		t.Fatalf("exported proof does not parse: %v", err)
	}
	if len(replay) != 4 {
		t.Errorf("expected 4 replay rules, got %d", len(replay))
	}

	out, err = execute(t, "runs", "--db", dbPath)
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if !strings.Contains(out, "decoys") || !strings.Contains(out, "succeeded") {
		t.Errorf("runs output missing the recorded run:\n%s", out)
	}

	out, err = execute(t, "runs", "--db", dbPath, "--verify", problem)
	if err != nil {
		t.Fatalf("runs --verify: %v", err)
	}
	if !strings.Contains(out, "Verified 1 runs: 1 valid, 0 stale") {
		t.Errorf("unexpected verify output:\n%s", out)
	}
}

func TestProveStepBudgetOverride(t *testing.T) {
	problem := writeProblem(t, problemYAML)

	out, err := execute(t, "prove", problem, "--step-budget", "2")
	if err != nil {
		t.Fatalf("prove: %v", err)
	}
	if !strings.Contains(out, "Search aborted after 2 expansions.") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestProveMissingBudget(t *testing.T) {
	problem := writeProblem(t, strings.Replace(problemYAML, "step_budget: 10000\n", "", 1))
	if _, err := execute(t, "prove", problem); err == nil {
		t.Fatal("expected an error without a step budget")
	}
}

func TestProveOracleWithoutModel(t *testing.T) {
	problem := writeProblem(t, problemYAML)
	if _, err := execute(t, "prove", problem, "--oracle"); err == nil {
		t.Fatal("expected an error when the oracle has no model")
	}
}

func TestBuildProverNonExistentDir(t *testing.T) {
	a := &app{}
	if err := a.setup(); err != nil {
		t.Fatalf("setup: %v", err)
	}
	defer a.teardown()

	components := &config.Components{Name: "x", StepBudget: 1}
	f := proveFlags{dbPath: filepath.Join(t.TempDir(), "missing", "runs.db")}
	if _, _, err := buildProver(context.Background(), a, components, f); err == nil {
		t.Error("buildProver should fail when the database directory does not exist")
	}
}

func TestDemoCommand(t *testing.T) {
	out, err := execute(t, "demo")
	if err != nil {
		t.Fatalf("demo: %v", err)
	}
	for _, want := range []string{"=== decoys ===", "Proof found in 4 steps.", "=== dead-end ===", "Proof found in 10 steps."} {
		if !strings.Contains(out, want) {
			t.Errorf("demo output missing %q:\n%s", want, out)
		}
	}
}

func TestSaturateCommand(t *testing.T) {
	problem := writeProblem(t, problemYAML)
	out, err := execute(t, "saturate", problem, "--max-depth", "5")
	if err != nil {
		t.Fatalf("saturate: %v", err)
	}
	if !strings.Contains(out, "Facts: {A, B, C, H, I}") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestRunsRequiresDB(t *testing.T) {
	if _, err := execute(t, "runs"); err == nil {
		t.Fatal("expected error without --db")
	}
}
