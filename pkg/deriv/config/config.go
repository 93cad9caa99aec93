package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/deriv/pkg/deriv/internalerr"
	"github.com/cognicore/deriv/pkg/deriv/logic"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Problem is a problem file:
//
//	name: disjunctive
//	step_budget: 10000
//	initial: [A]
//	goals: [F, G]
//	rules:
//	  - premises: [A]
//	    conclusion: B
//	  - premises: [C]
//	    conclusion: [D, E]
//	rules_file: extra.rules
type Problem struct {
	Name       string       `yaml:"name"`
	StepBudget int          `yaml:"step_budget" validate:"gte=0"`
	Initial    []string     `yaml:"initial" validate:"dive,required"`
	Goals      []string     `yaml:"goals" validate:"min=1,dive,required"`
	Rules      []RuleSpec   `yaml:"rules" validate:"dive"`
	RulesFile  string       `yaml:"rules_file"`
	Oracle     OracleConfig `yaml:"oracle"`
}

// RuleSpec is one rule in YAML form.
type RuleSpec struct {
	Name       string         `yaml:"name"`
	Premises   []string       `yaml:"premises" validate:"dive,required"`
	Conclusion ConclusionSpec `yaml:"conclusion"`
}

// ConclusionSpec accepts either a single atom or a list of alternatives.
type ConclusionSpec struct {
	Atoms []string
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *ConclusionSpec) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		c.Atoms = []string{s}
		return nil
	case yaml.SequenceNode:
		return value.Decode(&c.Atoms)
	default:
		return fmt.Errorf("line %d: conclusion must be an atom or a list of atoms", value.Line)
	}
}

// Conclusion converts the parsed atoms to a logic.Conclusion.
func (c ConclusionSpec) Conclusion() logic.Conclusion {
	if len(c.Atoms) == 1 {
		return logic.Single(logic.Atom(c.Atoms[0]))
	}
	return logic.Disjoint(toAtoms(c.Atoms)...)
}

// OracleConfig configures the external heuristic oracle.
type OracleConfig struct {
	Enabled       bool          `yaml:"enabled"`
	BaseURL       string        `yaml:"base_url" validate:"omitempty,url"`
	Model         string        `yaml:"model" validate:"required_if=Enabled true"`
	APIKeyEnv     string        `yaml:"api_key_env"`
	Timeout       time.Duration `yaml:"timeout" validate:"gte=0"`
	RatePerSecond float64       `yaml:"rate_per_second" validate:"gte=0"`
	CacheSize     int           `yaml:"cache_size" validate:"gte=0"`
}

// APIKey reads the key from the configured environment variable.
func (o OracleConfig) APIKey() string {
	if o.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(o.APIKeyEnv)
}

// LoadProblem reads and validates a problem file. A relative rules_file is
// resolved against the problem file's directory.
func LoadProblem(path string) (*Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var p Problem
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if p.RulesFile != "" && !filepath.IsAbs(p.RulesFile) {
		p.RulesFile = filepath.Join(filepath.Dir(path), p.RulesFile)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks field constraints.
func (p *Problem) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
	}
	return nil
}

// BuildRules converts inline rules and the rules file, in that order.
func (p *Problem) BuildRules() ([]*logic.Rule, error) {
	rules := make([]*logic.Rule, 0, len(p.Rules))
	for i, spec := range p.Rules {
		r, err := logic.NewRule(spec.Name, toAtoms(spec.Premises), spec.Conclusion.Conclusion())
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i+1, err)
		}
		rules = append(rules, r)
	}

	if p.RulesFile != "" {
		text, err := os.ReadFile(p.RulesFile)
		if err != nil {
			return nil, fmt.Errorf("load rules file: %w", err)
		}
		more, err := logic.ParseRules(string(text))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.RulesFile, err)
		}
		rules = append(rules, more...)
	}
	return rules, nil
}

// InitialState returns the initial facts.
func (p *Problem) InitialState() logic.State {
	return logic.NewState(toAtoms(p.Initial)...)
}

// GoalSet returns the goal atoms.
func (p *Problem) GoalSet() logic.GoalSet {
	return logic.NewGoalSet(toAtoms(p.Goals)...)
}

func toAtoms(ss []string) []logic.Atom {
	out := make([]logic.Atom, len(ss))
	for i, s := range ss {
		out[i] = logic.Atom(s)
	}
	return out
}
