package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Aleph-Alpha/colbert-search/v1/embedding"
	"github.com/Aleph-Alpha/colbert-search/v1/metrics"
)

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// detached runs fn with a context that ignores the caller's cancellation.
// The caller stops waiting when ctx is done; fn still runs to completion
// and its result is dropped.
func detached(ctx context.Context, fn func(ctx context.Context) error) error {
	done := make(chan error, 1)
	go func() {
		done <- fn(context.WithoutCancel(ctx))
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// reduced holds the pooled vector for one text, or the reason it has none.
type reduced struct {
	vector []float32
	err    error
}

// embedAndReduce makes exactly one adapter call for texts and mean-pools
// every tensor. A failure of the call itself is returned as an
// *EmbeddingError; failures of single texts are reported per item.
func embedAndReduce(ctx context.Context, e embedding.Embedder, m metrics.MetricsCollector, texts []string, kind embedding.Kind, dim int) ([]reduced, error) {
	start := time.Now()
	tensors, err := e.Embed(ctx, texts, kind)
	m.ObserveEmbedding(start, string(kind), len(texts))
	if err != nil {
		return nil, &EmbeddingError{Err: err}
	}
	if len(tensors) != len(texts) {
		return nil, &EmbeddingError{Err: fmt.Errorf("model returned %d tensors for %d texts", len(tensors), len(texts))}
	}

	out := make([]reduced, len(texts))
	for i, tensor := range tensors {
		vec, err := embedding.MeanPool(tensor)
		switch {
		case err != nil:
			out[i].err = &EmbeddingError{Err: err}
		case len(vec) != dim:
			out[i].err = validationErr("vector", "embedding has %d dimensions, collection expects %d", len(vec), dim)
		default:
			out[i].vector = vec
		}
	}
	return out, nil
}

// indexed formats a field path such as "docs[3].text".
func indexed(field string, i int, sub string) string {
	if sub == "" {
		return fmt.Sprintf("%s[%d]", field, i)
	}
	return fmt.Sprintf("%s[%d].%s", field, i, sub)
}
