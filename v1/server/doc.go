// Package server exposes the indexing and search pipelines over HTTP.
//
// Routes:
//
//	GET  /health          store reachability and collection stats (no key required)
//	POST /index/          {"doc_id", "text"}
//	POST /batch_index/    {"docs": [{"doc_id", "text"}, ...]}
//	POST /search/         {"query_texts": [...], "top_k": 3}
//	POST /batch_search/   {"queries": [...], "top_k": 3}
//
// top_k defaults to DEFAULT_TOP_K (3) and must lie in [1, MAX_TOP_K]; the
// upper bound defaults to 100 and values above it are rejected with 422 on
// field "top_k". Both search routes also accept at most MAX_BATCH_SIZE
// queries. Each entry of a search response is {"query", "results", "error"};
// "error" is set only for a query the model could not embed, and the other
// queries are still answered.
//
// Every POST route requires the X-API-Key header. Errors are returned as
// {"detail": "...", "field": "..."} with 422 for invalid input, 403 for a
// bad key, 413 for oversized batches, 500 for model failures and 503 when
// the vector store is unavailable.
package server
