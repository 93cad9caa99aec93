package config

import (
	"fmt"

	"github.com/cognicore/deriv/pkg/deriv/internalerr"
	"github.com/cognicore/deriv/pkg/deriv/logic"
)

// Loader loads a problem file and applies command-line overrides
type Loader struct {
	ProblemPath string
	RulesPath   string // replaces rules_file when set
	StepBudget  int    // replaces step_budget when > 0
}

// Components holds everything needed to run a search
type Components struct {
	Name       string
	Initial    logic.State
	Goals      logic.GoalSet
	Rules      []*logic.Rule
	StepBudget int
	Oracle     OracleConfig
}

// Load reads the problem and returns initialized components
func (l *Loader) Load() (*Components, error) {
	if l.ProblemPath == "" {
		return nil, fmt.Errorf("%w: problem path required", internalerr.ErrInvalidConfig)
	}

	p, err := LoadProblem(l.ProblemPath)
	if err != nil {
		return nil, fmt.Errorf("load problem: %w", err)
	}

	if l.RulesPath != "" {
		p.RulesFile = l.RulesPath
	}
	if l.StepBudget > 0 {
		p.StepBudget = l.StepBudget
	}
	// the budget is required but may come from the command line
	if p.StepBudget <= 0 {
		return nil, fmt.Errorf("%w: step_budget is required", internalerr.ErrInvalidConfig)
	}

	rules, err := p.BuildRules()
	if err != nil {
		return nil, fmt.Errorf("build rules: %w", err)
	}

	return &Components{
		Name:       p.Name,
		Initial:    p.InitialState(),
		Goals:      p.GoalSet(),
		Rules:      rules,
		StepBudget: p.StepBudget,
		Oracle:     p.Oracle,
	}, nil
}
