package heuristic

import (
	"context"
	"math"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/cognicore/deriv/pkg/deriv/logic"
	"github.com/cognicore/deriv/pkg/deriv/metrics"
)

// Composite asks primary first and falls back to the structural estimator.
//
//	estimate = primary.TryEstimate(s, goals) orElse fallback.Estimate(s, goals)
type Composite struct {
	primary  Strategy
	fallback Estimator
	cache    *lru.Cache[string, float64]
	log      *zap.Logger
	metrics  *metrics.Metrics
}

// CompositeOption configures a Composite.
type CompositeOption func(*Composite) error

// WithCache memoizes estimates for up to size distinct (state, goals) pairs.
func WithCache(size int) CompositeOption {
	return func(c *Composite) error {
		if size <= 0 {
			c.cache = nil
			return nil
		}
		cache, err := lru.New[string, float64](size)
		if err != nil {
			return err
		}
		c.cache = cache
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) CompositeOption {
	return func(c *Composite) error {
		if l != nil {
			c.log = l
		}
		return nil
	}
}

// WithMetrics records cache lookups.
func WithMetrics(m *metrics.Metrics) CompositeOption {
	return func(c *Composite) error {
		c.metrics = m
		return nil
	}
}

// NewComposite combines an optional primary strategy with a required fallback.
func NewComposite(primary Strategy, fallback Estimator, opts ...CompositeOption) (*Composite, error) {
	c := &Composite{
		primary:  primary,
		fallback: fallback,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Estimate implements Estimator.
func (c *Composite) Estimate(ctx context.Context, s logic.State, goals logic.GoalSet) float64 {
	var key string
	if c.cache != nil {
		key = goals.Key() + "\x1e" + s.Key()
		if v, ok := c.cache.Get(key); ok {
			c.metrics.CacheLookup(true)
			return v
		}
		c.metrics.CacheLookup(false)
	}

	v := c.estimate(ctx, s, goals)
	if c.cache != nil {
		c.cache.Add(key, v)
	}
	return v
}

func (c *Composite) estimate(ctx context.Context, s logic.State, goals logic.GoalSet) float64 {
	if c.primary != nil {
		if v, ok := c.primary.TryEstimate(ctx, s, goals); ok && !math.IsNaN(v) && v >= 0 {
			return v
		}
	}
	if c.fallback == nil {
		c.log.Debug("no fallback estimator configured, treating state as unscored")
		return 0
	}
	return c.fallback.Estimate(ctx, s, goals)
}
