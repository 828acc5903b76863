package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Aleph-Alpha/colbert-search/v1/gate"
	"github.com/Aleph-Alpha/colbert-search/v1/pipeline"
)

const healthTimeout = 3 * time.Second

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var req IndexRequest
	if !s.decode(w, r, &req) {
		return
	}

	err := s.indexer.Index(r.Context(), pipeline.Document{DocID: req.DocID, Text: req.Text})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, IndexResponse{Message: "Indexed", ID: req.DocID})
}

func (s *Server) handleBatchIndex(w http.ResponseWriter, r *http.Request) {
	var req BatchIndexRequest
	if !s.decode(w, r, &req) {
		return
	}

	docs := make([]pipeline.Document, len(req.Docs))
	for i, d := range req.Docs {
		docs[i] = pipeline.Document{DocID: d.DocID, Text: d.Text}
	}

	results, err := s.indexer.IndexBatch(r.Context(), docs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := BatchIndexResponse{Results: make([]BatchIndexItem, len(results))}
	for i, res := range results {
		item := BatchIndexItem{DocID: res.DocID, Status: ItemIndexed}
		if res.Err != nil {
			item.Status = ItemFailed
			item.Error = res.Err.Error()
			resp.Failed++
		} else {
			resp.Count++
		}
		resp.Results[i] = item
	}
	resp.Success = resp.Failed == 0
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.search(w, r, req.QueryTexts, req.TopK, "query_texts")
}

func (s *Server) handleBatchSearch(w http.ResponseWriter, r *http.Request) {
	var req BatchSearchRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.search(w, r, req.Queries, req.TopK, "queries")
}

// search serves both search endpoints. field is the request's name for the
// query list and is used in validation errors.
func (s *Server) search(w http.ResponseWriter, r *http.Request, queries []string, topK *int, field string) {
	k := s.searcher.DefaultTopK()
	if topK != nil {
		k = *topK
	}

	results, err := s.searcher.Search(r.Context(), queries, k)
	if err != nil {
		var ve *pipeline.ValidationError
		if errors.As(err, &ve) && strings.HasPrefix(ve.Field, "queries") {
			ve.Field = field + strings.TrimPrefix(ve.Field, "queries")
		}
		s.writeError(w, r, err)
		return
	}

	out := make([]QueryResult, len(results))
	for i, res := range results {
		hits := make([]SearchHit, len(res.Results))
		for j, h := range res.Results {
			hits[j] = SearchHit{DocID: h.DocID, Score: h.Score, Text: h.Text}
		}
		out[i] = QueryResult{Query: res.Query, Results: hits}
		if res.Err != nil {
			out[i].Error = res.Err.Error()
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	details := HealthDetails{
		Collection: s.collections.Name(),
		VectorSize: s.collections.VectorSize(),
		Distance:   string(s.collections.Distance()),
		Model:      s.embedder.Model(),
	}

	info, err := s.collections.Info(ctx)
	if err != nil {
		s.log.WarnWithContext(ctx, "Health check failed", err, nil)
		details.StoreStatus = "unreachable"
		details.Error = err.Error()
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "error", Details: details})
		return
	}

	details.StoreStatus = "reachable"
	details.CollectionPointsCount = info.PointCount
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Details: details})
}

// decode reads a JSON body. It writes the error response itself and
// returns false on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Detail: "request body too large"})
			return false
		}
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Detail: "malformed JSON body: " + err.Error(), Field: "body"})
		return false
	}
	return true
}

func (s *Server) rejectUnauthorized(w http.ResponseWriter, r *http.Request, err error) {
	s.log.WarnWithContext(r.Context(), "Rejected request", err, map[string]interface{}{
		"path":   r.URL.Path,
		"remote": r.RemoteAddr,
	})
	writeJSON(w, http.StatusForbidden, ErrorResponse{Detail: "Invalid or missing API key"})
}

// statusFor maps the pipeline error taxonomy to HTTP status codes.
func statusFor(err error) int {
	var (
		ve *pipeline.ValidationError
		ee *pipeline.EmbeddingError
		se *pipeline.StoreError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusUnprocessableEntity
	case errors.Is(err, pipeline.ErrBatchTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, gate.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &se):
		return http.StatusServiceUnavailable
	case errors.As(err, &ee):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	resp := ErrorResponse{Detail: err.Error()}

	var ve *pipeline.ValidationError
	if errors.As(err, &ve) {
		resp.Field = ve.Field
	}

	if status >= http.StatusInternalServerError {
		s.log.ErrorWithContext(r.Context(), "Request failed", err, map[string]interface{}{
			"path":   r.URL.Path,
			"status": status,
		})
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
