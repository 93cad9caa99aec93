package heuristic

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/cognicore/deriv/pkg/deriv/logic"
	"github.com/cognicore/deriv/pkg/deriv/metrics"
)

// DefaultOracleTimeout bounds a single oracle request.
const DefaultOracleTimeout = 10 * time.Second

// Completer is a chat-style text completion endpoint.
type Completer interface {
	Chat(ctx context.Context, system, user string) (string, error)
}

// numberPattern matches the first signed integer or decimal literal.
var numberPattern = regexp.MustCompile(`[-+]?(?:\d+(?:\.\d+)?|\.\d+)`)

// ExtractNumber returns the first numeric literal found anywhere in text.
func ExtractNumber(text string) (float64, bool) {
	m := numberPattern.FindString(text)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

const oracleSystemPrompt = "You estimate the remaining cost of a proof search. " +
	"Given the facts currently known, the goal facts and the inference rules, " +
	"reply with a single number: the minimum number of rule applications needed " +
	"to derive at least one goal fact."

// Oracle asks an external completer for an estimate. It never returns an
// error; every failure is logged and reported as "no answer".
type Oracle struct {
	completer Completer
	rulesText string
	timeout   time.Duration
	limiter   *rate.Limiter
	log       *zap.Logger
	metrics   *metrics.Metrics
}

// OracleOption configures an Oracle.
type OracleOption func(*Oracle)

// WithTimeout sets the per-request bound.
func WithTimeout(d time.Duration) OracleOption {
	return func(o *Oracle) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithRateLimit caps oracle requests per second. Zero disables the limit.
func WithRateLimit(perSecond float64, burst int) OracleOption {
	return func(o *Oracle) {
		if perSecond <= 0 {
			o.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		o.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithLimiter shares an existing limiter between oracles that call the same
// endpoint.
func WithLimiter(l *rate.Limiter) OracleOption {
	return func(o *Oracle) { o.limiter = l }
}

// WithOracleLogger sets the logger used for soft failures.
func WithOracleLogger(l *zap.Logger) OracleOption {
	return func(o *Oracle) {
		if l != nil {
			o.log = l
		}
	}
}

// WithOracleMetrics records calls and fallbacks.
func WithOracleMetrics(m *metrics.Metrics) OracleOption {
	return func(o *Oracle) { o.metrics = m }
}

// NewOracle builds an adapter over c for one rule set.
func NewOracle(c Completer, rules []*logic.Rule, opts ...OracleOption) *Oracle {
	o := &Oracle{
		completer: c,
		rulesText: logic.FormatRules(rules),
		timeout:   DefaultOracleTimeout,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

var errNoNumber = errors.New("no number in oracle response")
var errNegative = errors.New("negative oracle estimate")

// TryEstimate implements Strategy.
func (o *Oracle) TryEstimate(ctx context.Context, s logic.State, goals logic.GoalSet) (float64, bool) {
	v, err := o.estimate(ctx, s, goals)
	if err != nil {
		reason := metrics.ReasonError
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			reason = metrics.ReasonTimeout
		case errors.Is(err, errNoNumber):
			reason = metrics.ReasonUnparsable
		case errors.Is(err, errNegative):
			reason = metrics.ReasonNegative
		}
		o.metrics.OracleFellBack(reason)
		o.log.Warn("oracle estimate unavailable, using structural fallback",
			zap.String("reason", reason),
			zap.Stringer("state", s),
			zap.Error(err))
		return 0, false
	}
	return v, true
}

func (o *Oracle) estimate(ctx context.Context, s logic.State, goals logic.GoalSet) (float64, error) {
	if o.completer == nil {
		return 0, errors.New("oracle: no completer configured")
	}

	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	if o.limiter != nil {
		if err := o.limiter.Wait(callCtx); err != nil {
			return 0, fmt.Errorf("oracle rate limit: %w", err)
		}
	}

	system, user := o.Prompt(s, goals)
	o.metrics.OracleCalled()
	text, err := o.completer.Chat(callCtx, system, user)
	if err != nil {
		if callCtx.Err() != nil {
			return 0, fmt.Errorf("oracle call: %w", callCtx.Err())
		}
		return 0, fmt.Errorf("oracle call: %w", err)
	}

	v, ok := ExtractNumber(text)
	if !ok {
		return 0, fmt.Errorf("%w: %q", errNoNumber, truncate(text, 80))
	}
	if math.IsNaN(v) || v < 0 {
		return 0, fmt.Errorf("%w: %v", errNegative, v)
	}
	return v, nil
}

// Prompt renders the system and user messages sent to the completer.
func (o *Oracle) Prompt(s logic.State, goals logic.GoalSet) (system, user string) {
	var b strings.Builder
	fmt.Fprintf(&b, "Known facts: %s\n", s)
	fmt.Fprintf(&b, "Goal facts (any one suffices): %s\n", goals)
	b.WriteString("Rules (premises -> conclusion; '|' separates alternative branches):\n")
	b.WriteString(o.rulesText)
	b.WriteString("\nRespond with the estimated number of remaining steps only.\n")
	return oracleSystemPrompt, b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
