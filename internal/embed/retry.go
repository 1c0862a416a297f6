package embed

import (
	"context"
	"fmt"
	"time"
)

// RetryConfig configures the opt-in retry layer around an Embedder.
type RetryConfig struct {
	MaxRetries   int           // Retry attempts beyond the initial one. 0 disables retry.
	InitialDelay time.Duration // Delay before the first retry.
	MaxDelay     time.Duration // Cap on the backoff delay.
	Multiplier   float64       // Exponential backoff multiplier.
}

// DefaultRetryConfig returns the backoff shape used when retry is enabled.
// MaxRetries stays 0: the pipeline's default policy is no retry, with
// rate-limit pauses acting preventively rather than reactively.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:   0,
		InitialDelay: 1 * time.Second,
		MaxDelay:     16 * time.Second,
		Multiplier:   2.0,
	}
}

// RetryEmbedder wraps an Embedder with exponential-backoff retry. It exists
// as an explicit, separately tested hardening layer; runs that keep the
// default MaxRetries of 0 behave exactly like the bare embedder.
type RetryEmbedder struct {
	inner Embedder
	cfg   RetryConfig
}

// Verify interface implementation at compile time.
var _ Embedder = (*RetryEmbedder)(nil)

// WithRetry wraps inner with the given retry configuration. When retry is
// disabled the inner embedder is returned unwrapped.
func WithRetry(inner Embedder, cfg RetryConfig) Embedder {
	if cfg.MaxRetries <= 0 {
		return inner
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = DefaultRetryConfig().InitialDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = DefaultRetryConfig().MaxDelay
	}
	if cfg.Multiplier < 1 {
		cfg.Multiplier = DefaultRetryConfig().Multiplier
	}
	return &RetryEmbedder{inner: inner, cfg: cfg}
}

// EmbedBatch retries the inner call with exponential backoff. The context
// is honored between attempts, so Ctrl+C still stops a backoff wait.
func (r *RetryEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	delay := r.cfg.InitialDelay
	var lastErr error

	for attempt := 0; attempt <= r.cfg.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		vectors, err := r.inner.EmbedBatch(ctx, texts)
		if err == nil {
			return vectors, nil
		}
		lastErr = err

		if attempt >= r.cfg.MaxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}

		delay = time.Duration(float64(delay) * r.cfg.Multiplier)
		if delay > r.cfg.MaxDelay {
			delay = r.cfg.MaxDelay
		}
	}

	return nil, fmt.Errorf("embedding failed after %d retries: %w", r.cfg.MaxRetries, lastErr)
}

// Dimensions returns the inner embedding dimension.
func (r *RetryEmbedder) Dimensions() int {
	return r.inner.Dimensions()
}

// ModelName returns the inner model identifier.
func (r *RetryEmbedder) ModelName() string {
	return r.inner.ModelName()
}

// Close closes the inner embedder.
func (r *RetryEmbedder) Close() error {
	return r.inner.Close()
}
