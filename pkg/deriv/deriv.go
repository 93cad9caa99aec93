// Package deriv proves goal facts from initial facts with a set of
// disjunctive inference rules.
//
// A Prover wires the pieces together for every problem: the rule graph, the
// heuristic estimator (an optional language-model oracle over the
// structural fallback), a single-use search engine and, when configured, a
// run store that records outcomes.
package deriv

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/cognicore/deriv/pkg/deriv/config"
	"github.com/cognicore/deriv/pkg/deriv/heuristic"
	"github.com/cognicore/deriv/pkg/deriv/internalerr"
	"github.com/cognicore/deriv/pkg/deriv/logic"
	"github.com/cognicore/deriv/pkg/deriv/metrics"
	"github.com/cognicore/deriv/pkg/deriv/rulegraph"
	"github.com/cognicore/deriv/pkg/deriv/saturate"
	"github.com/cognicore/deriv/pkg/deriv/search"
	"github.com/cognicore/deriv/pkg/deriv/store"
)

// Problem is one search request
type Problem struct {
	Name       string
	Initial    logic.State
	Goals      logic.GoalSet
	Rules      []*logic.Rule
	StepBudget int
}

// ProblemFromConfig converts loaded configuration into a Problem
func ProblemFromConfig(c *config.Components) Problem {
	return Problem{
		Name:       c.Name,
		Initial:    c.Initial,
		Goals:      c.Goals,
		Rules:      c.Rules,
		StepBudget: c.StepBudget,
	}
}

// Options configures a Prover
type Options struct {
	Logger *zap.Logger

	// Oracle is consulted first for estimates; nil uses the structural
	// fallback alone.
	Oracle        heuristic.Completer
	OracleTimeout time.Duration
	OracleRate    float64 // requests per second across all searches, 0 = unlimited
	CacheSize     int     // estimate cache entries per search, 0 = off

	Store       store.Store
	Metrics     *metrics.Metrics
	Concurrency int // ProveAll parallelism, 0 = unlimited
}

// Prover runs searches. It is safe for concurrent use; every Prove call
// builds its own estimator and engine.
type Prover struct {
	opts    Options
	log     *zap.Logger
	limiter *rate.Limiter
}

// New creates a Prover with the given dependencies
func New(opts Options) *Prover {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	p := &Prover{opts: opts, log: log}
	if opts.Oracle != nil && opts.OracleRate > 0 {
		p.limiter = rate.NewLimiter(rate.Limit(opts.OracleRate), 1)
	}
	return p
}

// Close releases the run store, if any
func (p *Prover) Close() error {
	if p.opts.Store == nil {
		return nil
	}
	return p.opts.Store.Close()
}

// Proof is the outcome of one Prove call
type Proof struct {
	ID         string
	Problem    string
	StepBudget int
	StartedAt  time.Time
	*search.Result
}

// Succeeded reports whether a derivation was found
func (p *Proof) Succeeded() bool {
	return p.Result != nil && p.Status == search.StatusSucceeded
}

// Explain renders the outcome for people.
func (p *Proof) Explain() string {
	var b strings.Builder
	switch {
	case p.Succeeded():
		fmt.Fprintf(&b, "Proof found in %d steps.\n", p.Depth)
		fmt.Fprintf(&b, "Final state: %s\n", p.Final)
		b.WriteString("Sequence of applied rules:\n")
		for _, step := range p.Steps {
			fmt.Fprintf(&b, "  %s  (took %s)\n", step.Rule, step.Added)
		}
	case p.Result != nil && p.Status == search.StatusAborted:
		fmt.Fprintf(&b, "Search aborted after %d expansions.\n", p.Expansions)
	default:
		b.WriteString("No proof found.\n")
	}
	return b.String()
}

// Prove searches for a derivation of any goal atom. Exhausted and aborted
// searches are reported through the Proof, not as errors.
func (p *Prover) Prove(ctx context.Context, prob Problem) (*Proof, error) {
	if prob.Goals.Len() == 0 {
		return nil, fmt.Errorf("%w: problem %q has no goals", internalerr.ErrInvalidInput, prob.Name)
	}

	est, err := p.estimator(prob)
	if err != nil {
		return nil, err
	}
	engine, err := search.New(prob.Rules, est, search.Config{StepBudget: prob.StepBudget},
		search.WithLogger(p.log.With(zap.String("problem", prob.Name))),
		search.WithMetrics(p.opts.Metrics))
	if err != nil {
		return nil, err
	}

	proof := &Proof{
		ID:         ulid.Make().String(),
		Problem:    prob.Name,
		StepBudget: prob.StepBudget,
		StartedAt:  time.Now(),
	}
	res, runErr := engine.Run(ctx, prob.Initial, prob.Goals)
	if res == nil {
		return nil, runErr
	}
	proof.Result = res

	p.log.Info("search complete",
		zap.String("run", proof.ID),
		zap.String("problem", prob.Name),
		zap.Stringer("status", res.Status),
		zap.Int("depth", res.Depth),
		zap.Int("expansions", res.Expansions))

	if err := p.record(ctx, proof); err != nil {
		if runErr == nil {
			runErr = err
		}
		p.log.Warn("failed to record run", zap.String("run", proof.ID), zap.Error(err))
	}
	return proof, runErr
}

// ProveAll runs independent searches in parallel. Proofs are returned in
// problem order; the first error cancels the remaining searches.
func (p *Prover) ProveAll(ctx context.Context, probs []Problem) ([]*Proof, error) {
	proofs := make([]*Proof, len(probs))
	g, ctx := errgroup.WithContext(ctx)
	if p.opts.Concurrency > 0 {
		g.SetLimit(p.opts.Concurrency)
	}
	for i, prob := range probs {
		i, prob := i, prob
		g.Go(func() error {
			proof, err := p.Prove(ctx, prob)
			proofs[i] = proof
			if err != nil {
				return fmt.Errorf("problem %q: %w", prob.Name, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return proofs, err
	}
	return proofs, nil
}

// Saturate forward-chains the deterministic rules of prob from its initial
// state, at most maxDepth rounds.
func (p *Prover) Saturate(ctx context.Context, prob Problem, maxDepth int) (logic.State, int, error) {
	return saturate.Run(ctx, prob.Initial, saturate.FromRules(prob.Rules), maxDepth)
}

func (p *Prover) estimator(prob Problem) (heuristic.Estimator, error) {
	fallback := heuristic.NewFallback(rulegraph.New(prob.Rules))

	var primary heuristic.Strategy
	if p.opts.Oracle != nil {
		primary = heuristic.NewOracle(p.opts.Oracle, prob.Rules,
			heuristic.WithTimeout(p.opts.OracleTimeout),
			heuristic.WithLimiter(p.limiter),
			heuristic.WithOracleLogger(p.log),
			heuristic.WithOracleMetrics(p.opts.Metrics))
	}

	return heuristic.NewComposite(primary, fallback,
		heuristic.WithCache(p.opts.CacheSize),
		heuristic.WithLogger(p.log),
		heuristic.WithMetrics(p.opts.Metrics))
}

func (p *Prover) record(ctx context.Context, proof *Proof) error {
	if p.opts.Store == nil {
		return nil
	}
	run := store.Run{
		ID:         proof.ID,
		Problem:    proof.Problem,
		Status:     proof.Status.String(),
		Depth:      proof.Depth,
		Expansions: proof.Expansions,
		StepBudget: proof.StepBudget,
		StartedAt:  proof.StartedAt,
		Duration:   proof.Duration,
	}
	for _, step := range proof.Steps {
		run.Steps = append(run.Steps, store.Step{Rule: step.Rule.String(), Added: string(step.Added)})
	}
	for _, a := range proof.Final.Atoms() {
		run.Final = append(run.Final, string(a))
	}
	// a cancelled search is still worth recording
	if err := p.opts.Store.PutRun(context.WithoutCancel(ctx), run); err != nil {
		return fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}
	return nil
}
