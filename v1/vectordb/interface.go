package vectordb

import "context"

// Service is the common interface for the vector stores colbert-search can run
// on. The pipelines only ever talk to this interface, so switching between
// Qdrant, pgvector and the in-memory store is a configuration change.
//
//go:generate mockgen -source=interface.go -destination=mock_service.go -package=vectordb
type Service interface {
	// RecreateCollection drops the collection if it exists and creates it
	// empty with the given vector size and distance metric. It is the only
	// schema-mutating call and is meant to run once at startup.
	RecreateCollection(ctx context.Context, name string, vectorSize uint64, distance Distance) error

	// Upsert inserts or overwrites points keyed by EmbeddingInput.ID.
	Upsert(ctx context.Context, collectionName string, inputs []EmbeddingInput) error

	// Search runs one nearest-neighbour lookup per request and returns one
	// result slice per request, in request order, each sorted by
	// descending score.
	Search(ctx context.Context, requests ...SearchRequest) ([][]SearchResult, error)

	// GetCollection retrieves metadata about a collection.
	GetCollection(ctx context.Context, name string) (*Collection, error)

	// Count returns the exact number of points stored in a collection.
	Count(ctx context.Context, name string) (uint64, error)

	// Close releases the underlying connection.
	Close() error
}
