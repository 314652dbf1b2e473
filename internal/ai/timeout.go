package ai

import (
	"context"
	"time"
)

type timeoutGenerator struct {
	inner   IGenerator
	timeout time.Duration
}

// WrapTimeoutToGenerator bounds every completion call with a deadline so a
// hung provider cannot stall the caller. A non-positive timeout disables
// the wrapper.
func WrapTimeoutToGenerator(inner IGenerator, timeout time.Duration) IGenerator {
	if timeout <= 0 {
		return inner
	}
	return &timeoutGenerator{inner: inner, timeout: timeout}
}

func (g *timeoutGenerator) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.inner.Complete(ctx, req)
}

type timeoutEmbedder struct {
	inner   IEmbedder
	timeout time.Duration
}

func WrapTimeoutToEmbedder(inner IEmbedder, timeout time.Duration) IEmbedder {
	if timeout <= 0 {
		return inner
	}
	return &timeoutEmbedder{inner: inner, timeout: timeout}
}

func (e *timeoutEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	return e.inner.Embed(ctx, text, taskType)
}

func (e *timeoutEmbedder) ModelName() string {
	return e.inner.ModelName()
}
