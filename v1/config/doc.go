// Package config loads the service configuration.
//
// Values come from defaults, then an optional YAML file, then environment
// variables. The YAML layout mirrors Config:
//
//	store_backend: qdrant
//	qdrant:
//	  host: qdrant
//	  grpc_port: 6334
//	pipeline:
//	  collection_name: colbert_docs
//	  vector_size: 128
//	  distance: cosine
//	server:
//	  address: ":8000"
//
// Environment variables use flat names, e.g. API_KEY, MODEL_NAME,
// QDRANT_HOST, QDRANT_GRPC_PORT, COLLECTION_NAME, VECTOR_SIZE, STORE_BACKEND.
package config
