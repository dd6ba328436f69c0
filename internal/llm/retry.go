package llm

import (
	"context"
	"time"
)

// RetryingProvider retries transient failures a bounded number of times and
// optionally bounds every attempt with a timeout. Rate limit and credit
// errors are returned immediately.
type RetryingProvider struct {
	provider Provider
	retries  int
	timeout  time.Duration
	backoff  time.Duration
}

// NewRetryingProvider wraps provider. retries is the number of extra
// attempts after the first; timeout of zero disables the per-attempt bound.
func NewRetryingProvider(provider Provider, retries int, timeout, backoff time.Duration) *RetryingProvider {
	if retries < 0 {
		retries = 0
	}
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}
	return &RetryingProvider{
		provider: provider,
		retries:  retries,
		timeout:  timeout,
		backoff:  backoff,
	}
}

func (r *RetryingProvider) Name() string {
	return r.provider.Name()
}

func (r *RetryingProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	delay := r.backoff
	var lastErr error
	for attempt := 0; attempt <= r.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		resp, err := r.attempt(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if ctx.Err() != nil || !IsTransient(err) {
			return nil, err
		}
	}
	return nil, lastErr
}

func (r *RetryingProvider) attempt(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if r.timeout <= 0 {
		return r.provider.Complete(ctx, req)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.provider.Complete(attemptCtx, req)
}
