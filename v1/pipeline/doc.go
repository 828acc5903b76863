// Package pipeline implements indexing and search on top of an
// embedding.Embedder and a vectordb.Service.
//
// Both pipelines validate their input first, then call the embedder exactly
// once per request, mean-pool every token tensor to a single vector of the
// collection's dimension and finally talk to the store. Errors are typed:
// *ValidationError, *EmbeddingError and *StoreError, plus ErrBatchTooLarge.
//
// Collections recreates the configured collection when the fx app starts.
// Every restart therefore starts from an empty collection.
package pipeline
