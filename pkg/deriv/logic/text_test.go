package logic

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseRules(t *testing.T) {
	text := `
# reference rule set
A -> B
B -> C
[split] C -> D | E
D & E -> F
-> Z
`
	rules, err := ParseRules(text)
	if err != nil {
		t.Fatalf("ParseRules: %v", err)
	}
	if len(rules) != 5 {
		t.Fatalf("expected 5 rules, got %d", len(rules))
	}

	split := rules[2]
	if split.Name() != "split" {
		t.Errorf("name = %q", split.Name())
	}
	if diff := cmp.Diff([]Atom{"D", "E"}, split.Conclusions()); diff != "" {
		t.Errorf("conclusions (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Atom{"D", "E"}, rules[3].Premises()); diff != "" {
		t.Errorf("premises (-want +got):\n%s", diff)
	}
	if len(rules[4].Premises()) != 0 {
		t.Errorf("expected no premises, got %v", rules[4].Premises())
	}
}

func TestParseRulesErrors(t *testing.T) {
	tests := []string{
		"A B",
		"[unterminated A -> B",
		"A ->",
		"A -> |",
	}
	for _, text := range tests {
		_, err := ParseRules("# header\n" + text)
		if err == nil {
			t.Errorf("expected error for %q", text)
			continue
		}
		if !strings.HasPrefix(err.Error(), "line 2:") {
			t.Errorf("error should carry the line number, got %v", err)
		}
	}
}

func TestFormatRulesRoundTrip(t *testing.T) {
	text := "A -> B\n[split] C -> D | E\nA & B -> C\n"
	rules, err := ParseRules(text)
	if err != nil {
		t.Fatalf("ParseRules: %v", err)
	}
	if got := FormatRules(rules); got != text {
		t.Errorf("FormatRules = %q, want %q", got, text)
	}
}
