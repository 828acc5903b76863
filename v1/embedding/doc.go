// Package embedding wraps the late-interaction embedding model and the mean
// pooling that turns its output into one vector per text.
//
// The model is an external collaborator reached over HTTP (InferenceProvider).
// A HashingProvider can stand in for it locally. Either is wrapped in a Pool
// that bounds concurrent inference and runs each call to completion
// independently of request cancellation.
//
//	emb, _ := embedding.NewEmbedder(cfg)
//	tensors, _ := emb.Embed(ctx, []string{"The cat sat on the mat."}, embedding.KindDocument)
//	vec, _ := embedding.MeanPool(tensors[0])
//
// Configuration:
//
//	EMBEDDING_PROVIDER=inference|hashing
//	MODEL_NAME=LiquidAI/LFM2-ColBERT-350M
//	EMBEDDING_ENDPOINT=http://colbert:8080
//	EMBEDDING_SERVICE_TOKEN=...
//	EMBEDDING_HTTP_TIMEOUT=30s
//	INFERENCE_WORKERS=4
package embedding
