package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"mindmate/internal/conversation"
	"mindmate/internal/sentiment"
)

// Chain tries generation providers strictly in configured order, each under
// its own timeout, and falls back to the canned templates when every
// provider fails. Generate never fails outward.
type Chain struct {
	providers []Provider
	timeout   time.Duration
	logger    *zap.Logger
}

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

// Generate builds the prompt once and returns the first successful
// provider's trimmed text, or the canned reply for the sentiment label.
func (c *Chain) Generate(ctx context.Context, current string, history []conversation.Message, s sentiment.Result) string {
	prompt := BuildPrompt(current, history, s)

	for _, p := range c.providers {
		text, err := c.attempt(ctx, p, prompt)
		if err != nil {
			c.logger.Warn("generation provider failed",
				zap.String("provider", p.Name()),
				zap.Error(err))
			continue
		}
		return text
	}

	return Canned(s.Label)
}

func (c *Chain) attempt(ctx context.Context, p Provider, prompt string) (text string, err error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("generation provider panicked",
				zap.String("provider", p.Name()),
				zap.Any("panic", r))
			err = fmt.Errorf("provider panic: %v", r)
		}
	}()
	raw, err := p.Generate(attemptCtx, prompt)
	if err != nil {
		return "", err
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", errors.New("provider returned empty text")
	}
	return trimmed, nil
}
