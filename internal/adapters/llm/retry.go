package llm

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/soulscript/persona-api/internal/domain"
)

// RetryingClient wraps an LLMClient with bounded retry. Only transport
// failures are retried; empty responses and anything else fail immediately.
type RetryingClient struct {
	inner       domain.LLMClient
	maxAttempts int
}

// WithRetry decorates inner with up to maxAttempts total attempts using
// capped exponential backoff.
func WithRetry(inner domain.LLMClient, maxAttempts int) *RetryingClient {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &RetryingClient{inner: inner, maxAttempts: maxAttempts}
}

// Generate implements domain.LLMClient.
func (c *RetryingClient) Generate(ctx context.Context, systemInstruction, prompt string) (string, error) {
	var out string

	op := func() error {
		text, err := c.inner.Generate(ctx, systemInstruction, prompt)
		if err != nil {
			if domain.IsTransport(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		out = text
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond
	policy.MaxInterval = 10 * time.Second

	b := backoff.WithContext(
		backoff.WithMaxRetries(policy, uint64(c.maxAttempts-1)),
		ctx,
	)

	if err := backoff.Retry(op, b); err != nil {
		return "", err
	}
	return out, nil
}
