package embedding

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
)

// Pool bounds the number of concurrent inference calls.
//
// The model call itself is detached from the caller's cancellation: once a
// worker slot is acquired the call runs to completion even if the request
// times out, and its result is dropped. Callers stop waiting as soon as
// their context is done.
type Pool struct {
	next Embedder
	sem  *semaphore.Weighted
}

// NewPool wraps next with the given number of worker slots.
func NewPool(next Embedder, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{next: next, sem: semaphore.NewWeighted(int64(workers))}
}

type embedResult struct {
	tensors []Tensor
	err     error
}

// Embed runs next.Embed on a worker slot and waits for it.
func (p *Pool) Embed(ctx context.Context, texts []string, kind Kind) ([]Tensor, error) {
	if len(texts) == 0 {
		return []Tensor{}, nil
	}

	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("embedding: waiting for inference worker: %w", err)
	}

	done := make(chan embedResult, 1)
	go func() {
		defer p.sem.Release(1)
		tensors, err := p.next.Embed(context.WithoutCancel(ctx), texts, kind)
		done <- embedResult{tensors: tensors, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return nil, r.err
		}
		if len(r.tensors) != len(texts) {
			return nil, fmt.Errorf("embedding: model returned %d tensors for %d texts", len(r.tensors), len(texts))
		}
		return r.tensors, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Model delegates to the wrapped embedder.
func (p *Pool) Model() string {
	return p.next.Model()
}

// Close closes the wrapped embedder if it holds resources.
func (p *Pool) Close() error {
	if closer, ok := p.next.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
