package pipeline

import (
	"context"
	"errors"

	"github.com/Aleph-Alpha/colbert-search/v1/embedding"
	"github.com/Aleph-Alpha/colbert-search/v1/logger"
	"github.com/Aleph-Alpha/colbert-search/v1/metrics"
	"github.com/Aleph-Alpha/colbert-search/v1/tracer"
	"github.com/Aleph-Alpha/colbert-search/v1/vectordb"
)

const (
	resultIndexed = "indexed"
	resultFailed  = "failed"
)

// Document is a unit of indexing.
type Document struct {
	DocID string
	Text  string
}

// ItemResult is the outcome for one document of a batch. Err is nil on
// success.
type ItemResult struct {
	DocID string
	Err   error
}

// Indexed reports whether the document was written.
func (r ItemResult) Indexed() bool { return r.Err == nil }

// Indexer embeds documents and upserts them into the collection.
type Indexer struct {
	embedder    embedding.Embedder
	store       vectordb.Service
	collections *Collections
	maxBatch    int
	metrics     metrics.MetricsCollector
	log         logger.Logger
	tracer      *tracer.Tracer
}

func NewIndexer(p Params, c *Collections) *Indexer {
	return &Indexer{
		embedder:    p.Embedder,
		store:       p.Store,
		collections: c,
		maxBatch:    p.Config.MaxBatchSize,
		metrics:     p.Metrics,
		log:         p.Logger,
		tracer:      p.Tracer,
	}
}

// Index indexes a single document. Re-indexing a doc_id replaces it.
func (ix *Indexer) Index(ctx context.Context, doc Document) error {
	ctx, span := ix.tracer.StartSpan(ctx, "pipeline.Index")
	defer span.End()

	if err := validateDocument(doc, "doc_id", "text"); err != nil {
		ix.metrics.IncrementIndexed(resultFailed, 1)
		return err
	}

	vectors, err := embedAndReduce(ctx, ix.embedder, ix.metrics, []string{doc.Text}, embedding.KindDocument, ix.collections.VectorSize())
	if err == nil {
		err = vectors[0].err
	}
	if err != nil {
		ix.metrics.IncrementIndexed(resultFailed, 1)
		ix.tracer.RecordErrorOnSpan(span, err)
		return err
	}

	if err := ix.upsert(ctx, []vectordb.EmbeddingInput{toInput(doc, vectors[0].vector)}); err != nil {
		ix.metrics.IncrementIndexed(resultFailed, 1)
		ix.tracer.RecordErrorOnSpan(span, err)
		return err
	}

	ix.metrics.IncrementIndexed(resultIndexed, 1)
	return nil
}

// IndexBatch indexes docs with a single embedding call and a single upsert.
// Invalid documents and documents the model could not embed are reported as
// failed while the rest proceed. The returned slice has one entry per input,
// in input order. A store failure or an oversized batch fails the whole call.
func (ix *Indexer) IndexBatch(ctx context.Context, docs []Document) ([]ItemResult, error) {
	ctx, span := ix.tracer.StartSpan(ctx, "pipeline.IndexBatch")
	defer span.End()
	ix.tracer.SetAttributes(span, map[string]interface{}{"batch.size": len(docs)})

	if len(docs) > ix.maxBatch {
		return nil, batchTooLarge("docs", len(docs), ix.maxBatch)
	}

	results := make([]ItemResult, len(docs))
	var (
		pending []int
		texts   []string
	)
	for i, doc := range docs {
		results[i].DocID = doc.DocID
		if err := validateDocument(doc, indexed("docs", i, "doc_id"), indexed("docs", i, "text")); err != nil {
			results[i].Err = err
			continue
		}
		pending = append(pending, i)
		texts = append(texts, doc.Text)
	}

	if len(pending) > 0 {
		vectors, err := embedAndReduce(ctx, ix.embedder, ix.metrics, texts, embedding.KindDocument, ix.collections.VectorSize())
		if err != nil {
			ix.log.WarnWithContext(ctx, "Embedding failed for batch", err, map[string]interface{}{"documents": len(pending)})
			for _, i := range pending {
				results[i].Err = err
			}
			pending = nil
		}

		inputs := make([]vectordb.EmbeddingInput, 0, len(pending))
		for j, i := range pending {
			if vectors[j].err != nil {
				results[i].Err = vectors[j].err
				continue
			}
			inputs = append(inputs, toInput(docs[i], vectors[j].vector))
		}

		if err := ix.upsert(ctx, inputs); err != nil {
			ix.tracer.RecordErrorOnSpan(span, err)
			ix.metrics.IncrementIndexed(resultFailed, len(docs))
			return nil, err
		}
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	ix.metrics.IncrementIndexed(resultIndexed, len(docs)-failed)
	ix.metrics.IncrementIndexed(resultFailed, failed)
	if failed > 0 {
		ix.log.InfoWithContext(ctx, "Batch indexed with failures", nil, map[string]interface{}{
			"documents": len(docs),
			"failed":    failed,
		})
	}
	return results, nil
}

func (ix *Indexer) upsert(ctx context.Context, inputs []vectordb.EmbeddingInput) error {
	if len(inputs) == 0 {
		return nil
	}
	err := detached(ctx, func(ctx context.Context) error {
		return ix.store.Upsert(ctx, ix.collections.Name(), inputs)
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return &StoreError{Op: "upsert", Err: err}
	}
	return nil
}

func validateDocument(doc Document, idField, textField string) error {
	if isBlank(doc.DocID) {
		return validationErr(idField, "must not be empty")
	}
	if isBlank(doc.Text) {
		return validationErr(textField, "must not be empty or whitespace")
	}
	return nil
}

func toInput(doc Document, vec []float32) vectordb.EmbeddingInput {
	return vectordb.EmbeddingInput{
		ID:      doc.DocID,
		Vector:  vec,
		Payload: map[string]any{vectordb.PayloadText: doc.Text},
	}
}
