package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/Aleph-Alpha/colbert-search/v1/embedding"
	"github.com/Aleph-Alpha/colbert-search/v1/logger"
	"github.com/Aleph-Alpha/colbert-search/v1/memstore"
	"github.com/Aleph-Alpha/colbert-search/v1/metrics"
	"github.com/Aleph-Alpha/colbert-search/v1/pipeline"
	"github.com/Aleph-Alpha/colbert-search/v1/tracer"
	"github.com/Aleph-Alpha/colbert-search/v1/vectordb"
)

const testKey = "test-key"

type testServer struct {
	handler http.Handler
	store   vectordb.Service
}

func newTestServer(t *testing.T, e embedding.Embedder, store vectordb.Service, recreate bool) testServer {
	t.Helper()

	pcfg := pipeline.DefaultConfig()
	pcfg.VectorSize = 64
	pcfg.MaxBatchSize = 3

	pp := pipeline.Params{
		Config:   pcfg,
		Embedder: e,
		Store:    store,
		Metrics:  metrics.NewMetrics(metrics.Config{ServiceName: "test"}),
		Logger:   logger.NewNopLogger(),
		Tracer:   tracer.NewNoopTracer(),
	}
	collections, err := pipeline.NewCollections(pp)
	require.NoError(t, err)
	if recreate {
		require.NoError(t, collections.Recreate(context.Background()))
	}

	cfg := DefaultConfig()
	cfg.APIKey = testKey
	s, err := New(Params{
		Config:      cfg,
		Indexer:     pipeline.NewIndexer(pp, collections),
		Searcher:    pipeline.NewSearcher(pp, collections),
		Collections: collections,
		Embedder:    e,
		Metrics:     pp.Metrics,
		Logger:      pp.Logger,
	})
	require.NoError(t, err)
	return testServer{handler: s.Handler(), store: store}
}

func newLocalServer(t *testing.T) testServer {
	return newTestServer(t, embedding.NewHashingProvider(64), memstore.New(), true)
}

func (ts testServer) do(t *testing.T, method, path, key string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (ts testServer) count(t *testing.T) uint64 {
	t.Helper()
	n, err := ts.store.Count(context.Background(), "colbert_docs")
	require.NoError(t, err)
	return n
}

func TestIndexThenSearch(t *testing.T) {
	ts := newLocalServer(t)

	rec := ts.do(t, http.MethodPost, "/index/", testKey, IndexRequest{DocID: "doc1", Text: "The cat sat on the mat."})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, IndexResponse{Message: "Indexed", ID: "doc1"}, decodeBody[IndexResponse](t, rec))

	rec = ts.do(t, http.MethodPost, "/index/", testKey, IndexRequest{DocID: "doc2", Text: "Stock markets closed higher today."})
	require.Equal(t, http.StatusOK, rec.Code)

	one := 1
	rec = ts.do(t, http.MethodPost, "/search/", testKey, SearchRequest{QueryTexts: []string{"cat mat"}, TopK: &one})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	results := decodeBody[[]QueryResult](t, rec)
	require.Len(t, results, 1)
	assert.Equal(t, "cat mat", results[0].Query)
	require.Len(t, results[0].Results, 1)
	assert.Equal(t, "doc1", results[0].Results[0].DocID)
	assert.Equal(t, "The cat sat on the mat.", results[0].Results[0].Text)
}

func TestSearchDefaultsTopK(t *testing.T) {
	ts := newLocalServer(t)

	rec := ts.do(t, http.MethodPost, "/batch_index/", testKey, BatchIndexRequest{Docs: []IndexRequest{
		{DocID: "a", Text: "one"}, {DocID: "b", Text: "two"}, {DocID: "c", Text: "three"},
	}})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = ts.do(t, http.MethodPost, "/batch_index/", testKey, BatchIndexRequest{Docs: []IndexRequest{
		{DocID: "d", Text: "four"},
	}})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPost, "/search/", testKey, map[string]any{"query_texts": []string{"one"}})
	require.Equal(t, http.StatusOK, rec.Code)
	results := decodeBody[[]QueryResult](t, rec)
	assert.Len(t, results[0].Results, 3)
}

func TestBatchIndexPartialFailure(t *testing.T) {
	ts := newLocalServer(t)

	rec := ts.do(t, http.MethodPost, "/batch_index/", testKey, BatchIndexRequest{Docs: []IndexRequest{
		{DocID: "doc1", Text: "valid text"},
		{DocID: "doc2", Text: ""},
	}})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[BatchIndexResponse](t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, 1, resp.Failed)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "indexed", resp.Results[0].Status)
	assert.Equal(t, "failed", resp.Results[1].Status)
	assert.Contains(t, resp.Results[1].Error, "docs[1].text")

	assert.Equal(t, uint64(1), ts.count(t))
}

func TestBatchSearchKeepsOrder(t *testing.T) {
	ts := newLocalServer(t)
	ts.do(t, http.MethodPost, "/index/", testKey, IndexRequest{DocID: "d", Text: "hello"})

	rec := ts.do(t, http.MethodPost, "/batch_search/", testKey, BatchSearchRequest{Queries: []string{"b", "a", "c"}})
	require.Equal(t, http.StatusOK, rec.Code)
	results := decodeBody[[]QueryResult](t, rec)
	require.Len(t, results, 3)
	assert.Equal(t, "b", results[0].Query)
	assert.Equal(t, "a", results[1].Query)
	assert.Equal(t, "c", results[2].Query)
}

func TestAuthRejectedBeforeWork(t *testing.T) {
	ctrl := gomock.NewController(t)
	// Neither the embedder nor the store may be called.
	ts := newTestServer(t, embedding.NewMockEmbedder(ctrl), vectordb.NewMockService(ctrl), false)

	for _, path := range []string{"/index/", "/search/", "/batch_index/", "/batch_search/"} {
		for _, key := range []string{"", "wrong"} {
			rec := ts.do(t, http.MethodPost, path, key, map[string]any{"doc_id": "x", "text": "y"})
			assert.Equal(t, http.StatusForbidden, rec.Code, path)
			assert.Equal(t, "Invalid or missing API key", decodeBody[ErrorResponse](t, rec).Detail)
		}
	}
}

func TestAuthRejectionLeavesCountUnchanged(t *testing.T) {
	ts := newLocalServer(t)
	ts.do(t, http.MethodPost, "/index/", testKey, IndexRequest{DocID: "doc1", Text: "kept"})

	rec := ts.do(t, http.MethodPost, "/index/", "nope", IndexRequest{DocID: "doc2", Text: "rejected"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, uint64(1), ts.count(t))
}

func TestValidationErrors(t *testing.T) {
	ts := newLocalServer(t)

	rec := ts.do(t, http.MethodPost, "/index/", testKey, IndexRequest{DocID: "doc1", Text: "   "})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "text", decodeBody[ErrorResponse](t, rec).Field)

	zero := 0
	rec = ts.do(t, http.MethodPost, "/search/", testKey, SearchRequest{QueryTexts: []string{"q"}, TopK: &zero})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "top_k", decodeBody[ErrorResponse](t, rec).Field)

	overCap := pipeline.DefaultConfig().MaxTopK + 1
	rec = ts.do(t, http.MethodPost, "/search/", testKey, SearchRequest{QueryTexts: []string{"q"}, TopK: &overCap})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, "top_k", body.Field)
	assert.Contains(t, body.Detail, "at most 100")

	rec = ts.do(t, http.MethodPost, "/search/", testKey, SearchRequest{QueryTexts: []string{"q", ""}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "query_texts[1]", decodeBody[ErrorResponse](t, rec).Field)

	rec = ts.do(t, http.MethodPost, "/batch_search/", testKey, BatchSearchRequest{Queries: []string{""}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "queries[0]", decodeBody[ErrorResponse](t, rec).Field)
}

func TestMalformedBody(t *testing.T) {
	ts := newLocalServer(t)
	req := httptest.NewRequest(http.MethodPost, "/index/", bytes.NewBufferString("{not json"))
	req.Header.Set("X-API-Key", testKey)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "body", decodeBody[ErrorResponse](t, rec).Field)
}

func TestBatchTooLarge(t *testing.T) {
	ts := newLocalServer(t)

	docs := make([]IndexRequest, 4)
	for i := range docs {
		docs[i] = IndexRequest{DocID: string(rune('a' + i)), Text: "x"}
	}
	rec := ts.do(t, http.MethodPost, "/batch_index/", testKey, BatchIndexRequest{Docs: docs})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = ts.do(t, http.MethodPost, "/batch_search/", testKey, BatchSearchRequest{Queries: []string{"a", "b", "c", "d"}})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, uint64(0), ts.count(t))
}

func TestSearchEmptyList(t *testing.T) {
	ts := newLocalServer(t)
	rec := ts.do(t, http.MethodPost, "/search/", testKey, SearchRequest{QueryTexts: []string{}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestRouteWithoutTrailingSlash(t *testing.T) {
	ts := newLocalServer(t)
	rec := ts.do(t, http.MethodPost, "/index", testKey, IndexRequest{DocID: "doc1", Text: "text"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBatchSearchReportsUnembeddableQueryPerItem(t *testing.T) {
	ts := newLocalServer(t)
	ts.do(t, http.MethodPost, "/index/", testKey, IndexRequest{DocID: "doc1", Text: "The cat sat on the mat."})

	one := 1
	rec := ts.do(t, http.MethodPost, "/batch_search/", testKey, BatchSearchRequest{Queries: []string{"cat mat", "???"}, TopK: &one})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	results := decodeBody[[]QueryResult](t, rec)
	require.Len(t, results, 2)
	assert.Empty(t, results[0].Error)
	require.Len(t, results[0].Results, 1)
	assert.Equal(t, "doc1", results[0].Results[0].DocID)

	assert.Equal(t, "???", results[1].Query)
	assert.Contains(t, results[1].Error, "zero tokens")
	assert.Empty(t, results[1].Results)
}

func TestSearchDimensionMismatchBlamesVector(t *testing.T) {
	ctrl := gomock.NewController(t)
	e := embedding.NewMockEmbedder(ctrl)
	ts := newTestServer(t, e, vectordb.NewMockService(ctrl), false)

	e.EXPECT().Embed(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]embedding.Tensor{{make([]float32, 65)}}, nil)

	rec := ts.do(t, http.MethodPost, "/search/", testKey, SearchRequest{QueryTexts: []string{"q"}})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "vector", decodeBody[ErrorResponse](t, rec).Field)
}

func TestStoreAndEmbeddingFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	e := embedding.NewMockEmbedder(ctrl)
	store := vectordb.NewMockService(ctrl)
	ts := newTestServer(t, e, store, false)

	e.EXPECT().Embed(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("model offline"))
	rec := ts.do(t, http.MethodPost, "/index/", testKey, IndexRequest{DocID: "d", Text: "t"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	e.EXPECT().Embed(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]embedding.Tensor{{make([]float32, 64)}}, nil)
	store.EXPECT().Upsert(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("connection refused"))
	rec = ts.do(t, http.MethodPost, "/index/", testKey, IndexRequest{DocID: "d", Text: "t"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealth(t *testing.T) {
	ts := newLocalServer(t)
	ts.do(t, http.MethodPost, "/index/", testKey, IndexRequest{DocID: "doc1", Text: "text"})

	rec := ts.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[HealthResponse](t, rec)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "reachable", resp.Details.StoreStatus)
	assert.Equal(t, "colbert_docs", resp.Details.Collection)
	assert.Equal(t, 64, resp.Details.VectorSize)
	assert.Equal(t, "cosine", resp.Details.Distance)
	assert.Equal(t, "hashing", resp.Details.Model)
	assert.Equal(t, uint64(1), resp.Details.CollectionPointsCount)
}

func TestHealthStoreUnreachable(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := vectordb.NewMockService(ctrl)
	ts := newTestServer(t, embedding.NewHashingProvider(64), store, false)

	store.EXPECT().GetCollection(gomock.Any(), "colbert_docs").Return(nil, errors.New("dial tcp: connection refused"))

	rec := ts.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	resp := decodeBody[HealthResponse](t, rec)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "unreachable", resp.Details.StoreStatus)
	assert.NotEmpty(t, resp.Details.Error)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(&pipeline.ValidationError{Field: "text"}))
	assert.Equal(t, http.StatusInternalServerError, statusFor(&pipeline.EmbeddingError{Err: errors.New("x")}))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(&pipeline.StoreError{Op: "upsert", Err: errors.New("x")}))
	assert.Equal(t, http.StatusGatewayTimeout, statusFor(context.DeadlineExceeded))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
}
