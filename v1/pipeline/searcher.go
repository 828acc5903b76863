package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/Aleph-Alpha/colbert-search/v1/embedding"
	"github.com/Aleph-Alpha/colbert-search/v1/logger"
	"github.com/Aleph-Alpha/colbert-search/v1/metrics"
	"github.com/Aleph-Alpha/colbert-search/v1/tracer"
	"github.com/Aleph-Alpha/colbert-search/v1/vectordb"
)

// Hit is one ranked search result.
type Hit struct {
	DocID string
	Score float32
	Text  string
}

// QueryResult holds the hits for one query, best first. Err is set, and
// Results empty, when the query could not be embedded.
type QueryResult struct {
	Query   string
	Results []Hit
	Err     error
}

// Searcher embeds queries and runs nearest-neighbour lookups.
type Searcher struct {
	embedder    embedding.Embedder
	store       vectordb.Service
	collections *Collections
	maxBatch    int
	defaultTopK int
	maxTopK     int
	metrics     metrics.MetricsCollector
	log         logger.Logger
	tracer      *tracer.Tracer
}

func NewSearcher(p Params, c *Collections) *Searcher {
	return &Searcher{
		embedder:    p.Embedder,
		store:       p.Store,
		collections: c,
		maxBatch:    p.Config.MaxBatchSize,
		defaultTopK: p.Config.DefaultTopK,
		maxTopK:     p.Config.MaxTopK,
		metrics:     p.Metrics,
		log:         p.Logger,
		tracer:      p.Tracer,
	}
}

// DefaultTopK is used by callers when a request does not set top_k.
func (s *Searcher) DefaultTopK() int { return s.defaultTopK }

// Search returns one QueryResult per query, in input order, each holding at
// most topK hits sorted by descending score. All queries are embedded with
// a single model call. A query the model cannot embed is reported in its
// own QueryResult.Err while the others are still searched. An empty query
// list yields an empty result.
func (s *Searcher) Search(ctx context.Context, queries []string, topK int) ([]QueryResult, error) {
	ctx, span := s.tracer.StartSpan(ctx, "pipeline.Search")
	defer span.End()
	s.tracer.SetAttributes(span, map[string]interface{}{
		"search.queries": len(queries),
		"search.top_k":   topK,
	})

	if topK < 1 {
		return nil, validationErr("top_k", "must be at least 1, got %d", topK)
	}
	if topK > s.maxTopK {
		return nil, validationErr("top_k", "must be at most %d, got %d", s.maxTopK, topK)
	}
	if len(queries) > s.maxBatch {
		return nil, batchTooLarge("queries", len(queries), s.maxBatch)
	}
	for i, q := range queries {
		if isBlank(q) {
			return nil, validationErr(indexed("queries", i, ""), "must not be empty or whitespace")
		}
	}
	if len(queries) == 0 {
		return []QueryResult{}, nil
	}

	vectors, err := embedAndReduce(ctx, s.embedder, s.metrics, queries, embedding.KindQuery, s.collections.VectorSize())
	if err != nil {
		s.tracer.RecordErrorOnSpan(span, err)
		return nil, err
	}

	out := make([]QueryResult, len(queries))
	var (
		requests []vectordb.SearchRequest
		owners   []int
	)
	for i, v := range vectors {
		out[i] = QueryResult{Query: queries[i], Results: []Hit{}}
		if v.err != nil {
			var ve *ValidationError
			if errors.As(v.err, &ve) {
				ve.Reason = fmt.Sprintf("query %d: %s", i, ve.Reason)
				s.tracer.RecordErrorOnSpan(span, v.err)
				return nil, v.err
			}
			out[i].Err = v.err
			continue
		}
		requests = append(requests, vectordb.SearchRequest{
			CollectionName: s.collections.Name(),
			Vector:         v.vector,
			TopK:           topK,
		})
		owners = append(owners, i)
	}

	failed := len(queries) - len(requests)
	if failed > 0 {
		s.log.WarnWithContext(ctx, "Some queries could not be embedded", nil, map[string]interface{}{
			"queries": len(queries),
			"failed":  failed,
		})
	}
	if len(requests) == 0 {
		return out, nil
	}

	var hits [][]vectordb.SearchResult
	err = detached(ctx, func(ctx context.Context) error {
		var err error
		hits, err = s.store.Search(ctx, requests...)
		return err
	})
	if err != nil {
		if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			err = &StoreError{Op: "search", Err: err}
		}
		s.tracer.RecordErrorOnSpan(span, err)
		return nil, err
	}

	for j, i := range owners {
		res := make([]Hit, 0, len(hits[j]))
		for _, h := range hits[j] {
			res = append(res, Hit{DocID: h.ID, Score: h.Score, Text: h.Text()})
		}
		s.metrics.ObserveSearchResults(len(res))
		out[i].Results = res
	}
	return out, nil
}
