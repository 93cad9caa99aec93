// Package heuristic estimates how many rule applications separate a state
// from a goal.
//
// Estimates come from a two-stage strategy: an optional external oracle is
// asked first, and whenever it fails or misbehaves a deterministic
// breadth-first distance over the rule graph is used instead. Callers only
// ever see a number.
package heuristic

import (
	"context"
	"math"

	"github.com/cognicore/deriv/pkg/deriv/logic"
)

// Unreachable is returned when no goal atom can be reached. It orders after
// every finite estimate.
var Unreachable = math.Inf(1)

// Estimator produces a nonnegative cost estimate. It never fails.
type Estimator interface {
	Estimate(ctx context.Context, s logic.State, goals logic.GoalSet) float64
}

// Strategy is an estimator that may decline to answer.
type Strategy interface {
	TryEstimate(ctx context.Context, s logic.State, goals logic.GoalSet) (float64, bool)
}

// EstimatorFunc adapts a function to Estimator.
type EstimatorFunc func(ctx context.Context, s logic.State, goals logic.GoalSet) float64

// Estimate implements Estimator.
func (f EstimatorFunc) Estimate(ctx context.Context, s logic.State, goals logic.GoalSet) float64 {
	return f(ctx, s, goals)
}
