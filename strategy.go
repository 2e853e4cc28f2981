package clipfetch

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
)

var (
	PriorityHighest int16 = -1000
	PriorityDefault int16 = 0
	PriorityLowest  int16 = 1000
)

// An AttemptFunc is one self-contained way of resolving a content key into a result.
type AttemptFunc[T any] func(ctx context.Context, key string) (T, error)

// A Strategy wraps an AttemptFunc with a name (for diagnostics) and a priority that
// determines its position in a Chain. Lower priority means attempting earlier.
type Strategy[T any] struct {
	Name     string
	Attempt  AttemptFunc[T]
	Priority int16
}

// A Chain is an ordered collection of strategies tried strictly in sequence: strategy
// n+1 never starts before strategy n has fully failed, and the first success wins.
// Strategies with rate-limited or block-happy origins belong late in the chain.
type Chain[T any] struct {
	strategies  []*Strategy[T]
	strategyMap map[string]*Strategy[T]
}

// Add registers a Strategy with the Chain. Strategy.Name and Strategy.Attempt must be
// set, and Strategy.Name must be unique within the Chain.
func (c *Chain[T]) Add(s Strategy[T]) error {
	if c.strategyMap == nil {
		c.strategyMap = make(map[string]*Strategy[T])
	}
	if s.Name == "" || s.Attempt == nil {
		return ErrInvalidStrategy
	}
	if _, ok := c.strategyMap[s.Name]; ok {
		return ErrDuplicateStrategy
	}
	c.strategyMap[s.Name] = &s
	c.strategies = append(c.strategies, c.strategyMap[s.Name])
	c.sortByPriority()
	return nil
}

// MustAdd wraps Add but panics if there is an error.
func (c *Chain[T]) MustAdd(s Strategy[T]) {
	if err := c.Add(s); err != nil {
		panic(err)
	}
}

// List returns the names of registered strategies in attempt order.
func (c *Chain[T]) List() []string {
	names := make([]string, 0, len(c.strategies))
	for _, s := range c.strategies {
		names = append(names, s.Name)
	}
	return names
}

// Len returns the number of registered strategies.
func (c *Chain[T]) Len() int {
	return len(c.strategies)
}

// Resolve tries each strategy in priority order until one succeeds. On exhaustion it
// returns an error wrapping ErrResolutionFailed together with every per-strategy
// failure, so callers can report a generic failure while keeping the detail loggable.
func (c *Chain[T]) Resolve(ctx context.Context, key string) (T, error) {
	var zero T
	logger := Logger(ctx)
	var failures error
	for _, s := range c.strategies {
		if err := ctx.Err(); err != nil {
			failures = multierror.Append(failures, err)
			break
		}
		result, err := s.Attempt(ctx, key)
		if err == nil {
			logger.Debug("strategy succeeded", zap.String("strategy", s.Name))
			return result, nil
		}
		logger.Warn("strategy failed", zap.String("strategy", s.Name), zap.Error(err))
		failures = multierror.Append(failures, multierror.Prefix(err, fmt.Sprintf("[%v]", s.Name)))
	}
	if failures == nil {
		return zero, fmt.Errorf("%w: no strategies registered", ErrResolutionFailed)
	}
	return zero, fmt.Errorf("%w: %v", ErrResolutionFailed, failures)
}

func (c *Chain[T]) sortByPriority() {
	sort.SliceStable(c.strategies, func(i, j int) bool {
		return c.strategies[i].Priority < c.strategies[j].Priority
	})
}
