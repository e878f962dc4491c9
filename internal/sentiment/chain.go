package sentiment

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Chain tries providers strictly in configured order and falls back to the
// lexicon scorer when every provider fails. Score never fails outward.
type Chain struct {
	providers []Provider
	timeout   time.Duration
	logger    *zap.Logger
}

// NewChain keeps the given provider order. Callers omit adapters whose
// credentials are absent at construction time; the chain never re-checks.
func NewChain(providers []Provider, timeout time.Duration, logger *zap.Logger) *Chain {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chain{providers: providers, timeout: timeout, logger: logger}
}

// Providers reports the configured provider names, in attempt order.
func (c *Chain) Providers() []string {
	names := make([]string, 0, len(c.providers))
	for _, p := range c.providers {
		names = append(names, p.Name())
	}
	return names
}

// Score returns the first successful provider result, normalized, or the
// lexicon score when the chain is exhausted.
func (c *Chain) Score(ctx context.Context, text string) Result {
	for _, p := range c.providers {
		res, err := c.attempt(ctx, p, text)
		if err != nil {
			c.logger.Warn("sentiment provider failed",
				zap.String("provider", p.Name()),
				zap.Error(err))
			continue
		}
		return res
	}
	return LexiconScore(text)
}

func (c *Chain) attempt(ctx context.Context, p Provider, text string) (res Result, err error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("sentiment provider panicked",
				zap.String("provider", p.Name()),
				zap.Any("panic", r))
			err = fmt.Errorf("provider panic: %v", r)
		}
	}()
	res, err = p.Analyze(attemptCtx, text)
	if err != nil {
		return Result{}, err
	}
	return normalize(res), nil
}
