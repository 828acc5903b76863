// Package pgvector implements vectordb.Service on PostgreSQL using the
// pgvector extension and pgx.
//
// Each collection is stored in its own table named "colbert_<collection>"
// with columns doc_id (primary key), text, payload (JSONB) and embedding
// (vector(n)), indexed with HNSW using the operator class matching the
// collection's distance. Vector size and distance are recorded in the
// colbert_collections table so they survive restarts of the process.
//
// Scores follow the vectordb convention of higher meaning closer: cosine
// similarity is 1 - (a <=> b), dot product is -(a <#> b) and Euclid is the
// negated L2 distance.
package pgvector
