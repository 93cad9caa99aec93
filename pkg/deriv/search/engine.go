// Package search runs heuristic best-first search over fact states.
//
// An Engine pops the pending state with the lowest (estimate, depth, push
// order), stops when that state holds a goal atom, and otherwise expands it
// through every rule and every disjunctive branch. States already expanded
// are skipped when popped and never pushed again. A hard step budget bounds
// the number of expansions.
//
// The estimator is not assumed admissible, so returned derivations are only
// guaranteed shortest when it is (the structural fallback is).
package search

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/cognicore/deriv/pkg/deriv/heuristic"
	"github.com/cognicore/deriv/pkg/deriv/internalerr"
	"github.com/cognicore/deriv/pkg/deriv/logic"
	"github.com/cognicore/deriv/pkg/deriv/metrics"
)

// SuggestedStepBudget is the cutoff the reference rule sets were tuned with.
// It is documentation only; Config.StepBudget has no implicit default.
const SuggestedStepBudget = 10000

var (
	// ErrNoDerivation means the frontier emptied without reaching a goal.
	ErrNoDerivation = errors.New("no derivation: goal unreachable from the initial state")
	// ErrBudgetExceeded means the step budget ran out first.
	ErrBudgetExceeded = errors.New("search aborted: step budget exceeded")
	// ErrEngineUsed is returned when Run is called on an engine that already ran.
	ErrEngineUsed = errors.New("search engine already used")
)

// Status is the phase of an Engine. Succeeded, Exhausted and Aborted are terminal.
type Status int

const (
	StatusReady Status = iota
	StatusRunning
	StatusSucceeded
	StatusExhausted
	StatusAborted
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusRunning:
		return "running"
	case StatusSucceeded:
		return "succeeded"
	case StatusExhausted:
		return "exhausted"
	case StatusAborted:
		return "aborted"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Config holds the search limits.
type Config struct {
	// StepBudget is the maximum number of expansions. Required, > 0.
	StepBudget int
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.StepBudget <= 0 {
		return fmt.Errorf("%w: step budget must be positive, got %d", internalerr.ErrInvalidConfig, c.StepBudget)
	}
	return nil
}

// Step is one rule application: the rule and the conclusion branch it added.
type Step struct {
	Rule  *logic.Rule
	Added logic.Atom
}

// Result describes how a search ended.
type Result struct {
	Status     Status
	Steps      []Step      // derivation, set on success
	Final      logic.State // goal state, set on success
	Depth      int         // len(Steps)
	Expansions int         // states expanded
	Pushed     int         // frontier pushes, initial state included
	Closed     int         // distinct states in the closed set
	Duration   time.Duration
}

// Path returns the applied rules in order.
func (r *Result) Path() []*logic.Rule {
	out := make([]*logic.Rule, len(r.Steps))
	for i, s := range r.Steps {
		out[i] = s.Rule
	}
	return out
}

// Err maps unsuccessful terminal statuses to their sentinel errors.
func (r *Result) Err() error {
	switch r.Status {
	case StatusSucceeded:
		return nil
	case StatusExhausted:
		return ErrNoDerivation
	case StatusAborted:
		return ErrBudgetExceeded
	default:
		return fmt.Errorf("search not finished: %s", r.Status)
	}
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithMetrics records expansions and terminal statuses.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// Engine runs a single search. It owns its frontier, closed set and
// sequence counter; build a new Engine for every search.
type Engine struct {
	rules    []*logic.Rule
	branches [][]logic.Atom
	est      heuristic.Estimator
	cfg      Config
	log      *zap.Logger
	metrics  *metrics.Metrics

	phase    Status
	frontier Frontier
	closed   *ClosedSet
	seq      uint64
}

// New prepares an engine. Rules are shared read-only.
func New(rules []*logic.Rule, est heuristic.Estimator, cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if est == nil {
		return nil, fmt.Errorf("%w: nil estimator", internalerr.ErrInvalidInput)
	}
	branches := make([][]logic.Atom, len(rules))
	for i, r := range rules {
		if r == nil {
			return nil, fmt.Errorf("%w: rule %d is nil", internalerr.ErrInvalidInput, i)
		}
		branches[i] = r.Conclusions()
	}

	e := &Engine{
		rules:    rules,
		branches: branches,
		est:      est,
		cfg:      cfg,
		log:      zap.NewNop(),
		phase:    StatusReady,
		closed:   NewClosedSet(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Phase returns the current phase.
func (e *Engine) Phase() Status { return e.phase }

// Run searches from initial until a state satisfies goals, the frontier is
// exhausted, or the step budget is spent. Exhausted and Aborted are normal
// results, not errors; an error is returned only for misuse or when ctx ends.
func (e *Engine) Run(ctx context.Context, initial logic.State, goals logic.GoalSet) (*Result, error) {
	if e.phase != StatusReady {
		return nil, ErrEngineUsed
	}
	e.phase = StatusRunning
	start := time.Now()
	res := &Result{}

	e.push(ctx, res, initial, goals, 0, nil)

	for {
		if err := ctx.Err(); err != nil {
			e.finish(res, StatusAborted, start)
			return res, fmt.Errorf("search interrupted: %w", err)
		}

		cur := e.frontier.PopMin()
		if cur == nil {
			e.finish(res, StatusExhausted, start)
			return res, nil
		}

		if goals.SatisfiedBy(cur.State) {
			res.Steps = cur.path.steps()
			res.Final = cur.State
			res.Depth = cur.G
			e.finish(res, StatusSucceeded, start)
			return res, nil
		}

		// lazy deletion: duplicates stay on the frontier until popped
		if e.closed.Contains(cur.State) {
			continue
		}

		if res.Expansions >= e.cfg.StepBudget {
			e.finish(res, StatusAborted, start)
			return res, nil
		}

		e.closed.Add(cur.State)
		pushed := e.expand(ctx, res, cur, goals)
		res.Expansions++
		e.metrics.Expanded(pushed)
	}
}

func (e *Engine) expand(ctx context.Context, res *Result, cur *Entry, goals logic.GoalSet) int {
	pushed := 0
	for i, r := range e.rules {
		for j, next := range r.Apply(cur.State) {
			if e.closed.Contains(next) {
				continue
			}
			e.push(ctx, res, next, goals, cur.G+1, cur.path.extend(r, e.branches[i][j]))
			pushed++
		}
	}
	return pushed
}

func (e *Engine) push(ctx context.Context, res *Result, s logic.State, goals logic.GoalSet, g int, path *pathNode) {
	h := e.est.Estimate(ctx, s, goals)
	if math.IsNaN(h) || h < 0 {
		h = 0
	}
	e.seq++
	e.frontier.Push(&Entry{
		F:     float64(g) + h,
		G:     g,
		Seq:   e.seq,
		State: s,
		path:  path,
	})
	res.Pushed++
}

func (e *Engine) finish(res *Result, status Status, start time.Time) {
	e.phase = status
	res.Status = status
	res.Closed = e.closed.Len()
	res.Duration = time.Since(start)
	e.metrics.SearchFinished(status.String(), res.Duration)
	e.log.Debug("search finished",
		zap.Stringer("status", status),
		zap.Int("depth", res.Depth),
		zap.Int("expansions", res.Expansions),
		zap.Int("pushed", res.Pushed),
		zap.Int("frontier", e.frontier.Len()),
		zap.Duration("elapsed", res.Duration))
}
