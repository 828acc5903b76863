// Package qdrant stores document embeddings in Qdrant over gRPC.
//
// QdrantClient owns the connection and verifies it with a health check at
// construction time. Adapter implements vectordb.Service on top of it:
//
//	qc, err := qdrant.NewQdrantClient(qdrant.QdrantParams{
//	    Config: qdrant.DefaultConfig(),
//	    Logger: log,
//	})
//	if err != nil {
//	    return err
//	}
//	var store vectordb.Service = qdrant.NewAdapterFromClient(qc)
//
//	err = store.RecreateCollection(ctx, "colbert_docs", 128, vectordb.Cosine)
//
// # Point ids
//
// Qdrant accepts only unsigned integers and UUIDs as point ids. Document ids
// that are already canonical UUIDs (lower-case, dashed) are used directly;
// any other string, including other spellings of a UUID, is mapped to a
// name-based UUID (see PointID). The doc_id itself is always stored in the
// "doc_id" payload field and returned as SearchResult.ID.
//
// # Port
//
// The client speaks gRPC, so QDRANT_GRPC_PORT (default 6334) must point at
// Qdrant's gRPC listener. A QDRANT_PORT variable set to the REST port 6333
// is not read.
//
// # Scores
//
// Cosine and Dot scores are returned as reported by Qdrant. Euclid
// collections report a distance, which the adapter negates so that a higher
// score always means a closer match.
//
// # Fx
//
//	app := fx.New(
//	    fx.Supply(qdrant.DefaultConfig()),
//	    logger.FXModule,
//	    qdrant.FXModule,
//	)
package qdrant
