package logic

import (
	"bufio"
	"fmt"
	"strings"
)

// ParseRules reads rules in the text rule format, one per line:
//
//	# comment
//	[name] A & B -> C
//	C -> D | E
//
// The bracketed name is optional. "&" joins premises, "|" separates
// disjunctive conclusions. A rule with no premises is written "-> A".
func ParseRules(text string) ([]*Rule, error) {
	scanner := bufio.NewScanner(strings.NewReader(text))
	lineNum := 0
	var rules []*Rule

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		rule, err := parseRule(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		rules = append(rules, rule)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return rules, nil
}

// parseRule parses "[name] A & B -> C | D"
func parseRule(line string) (*Rule, error) {
	name := ""
	if strings.HasPrefix(line, "[") {
		end := strings.Index(line, "]")
		if end == -1 {
			return nil, fmt.Errorf("missing ']': %s", line)
		}
		name = strings.TrimSpace(line[1:end])
		line = strings.TrimSpace(line[end+1:])
	}

	lhs, rhs, ok := strings.Cut(line, "->")
	if !ok {
		return nil, fmt.Errorf("missing '->': %s", line)
	}

	premises := splitAtoms(lhs, "&")
	conclusions := splitAtoms(rhs, "|")
	if len(conclusions) == 0 {
		return nil, fmt.Errorf("no conclusions: %s", line)
	}

	return NewRule(name, premises, Disjoint(conclusions...))
}

func splitAtoms(s, sep string) []Atom {
	var out []Atom
	for _, part := range strings.Split(s, sep) {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, Atom(part))
		}
	}
	return out
}

// FormatRules renders rules one per line in the format ParseRules reads.
func FormatRules(rules []*Rule) string {
	var b strings.Builder
	for _, r := range rules {
		b.WriteString(r.String())
		b.WriteString("\n")
	}
	return b.String()
}
