// Package vectordb defines the store-agnostic contract colbert-search uses for
// collection lifecycle, upserts and nearest-neighbour search.
//
// Implementations live in sibling packages:
//
//	qdrant.NewAdapter(client)      // Qdrant over gRPC (default)
//	pgvector.NewAdapter(pool, cfg) // PostgreSQL + pgvector
//	memstore.New()                 // in-process, for development and tests
//
// Scores are always "higher is more similar"; adapters whose native metric is
// a distance convert it before returning.
package vectordb
