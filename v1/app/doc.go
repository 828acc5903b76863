// Package app composes the colbert-search service from its fx modules:
// configuration, logging, tracing, metrics, the embedding pool, the
// selected vector store, the indexing and search pipelines and the HTTP
// server.
package app
