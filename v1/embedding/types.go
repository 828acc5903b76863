package embedding

import "context"

// Kind tells a late-interaction model whether it is encoding a query or a
// document; ColBERT-style models use different markers and padding for each.
type Kind string

const (
	KindDocument Kind = "document"
	KindQuery    Kind = "query"
)

// Tensor is a multi-vector embedding: one row per token, all rows of equal width.
type Tensor [][]float32

// Embedder is the contract for the embedding model.
//
// Embed returns exactly one Tensor per input text, in input order. An empty
// input returns an empty result and no error. Implementations must be safe
// for concurrent use.
//
//go:generate mockgen -source=types.go -destination=mock_embedder.go -package=embedding
type Embedder interface {
	Embed(ctx context.Context, texts []string, kind Kind) ([]Tensor, error)

	// Model returns the model identifier, used in logs and /health.
	Model() string
}
