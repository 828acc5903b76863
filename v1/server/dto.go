package server

// IndexRequest is the body of POST /index/.
type IndexRequest struct {
	DocID string `json:"doc_id"`
	Text  string `json:"text"`
}

// IndexResponse acknowledges a single indexed document.
type IndexResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// SearchRequest is the body of POST /search/. TopK defaults to the
// configured default when omitted and may not exceed MAX_TOP_K (default
// 100).
type SearchRequest struct {
	QueryTexts []string `json:"query_texts"`
	TopK       *int     `json:"top_k,omitempty"`
}

// BatchIndexRequest is the body of POST /batch_index/.
type BatchIndexRequest struct {
	Docs []IndexRequest `json:"docs"`
}

// Per-document outcomes reported in BatchIndexItem.Status.
const (
	ItemIndexed = "indexed"
	ItemFailed  = "failed"
)

// BatchIndexItem reports the outcome for one document.
type BatchIndexItem struct {
	DocID  string `json:"doc_id"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// BatchIndexResponse summarises a batch. Success is true only when every
// document was indexed.
type BatchIndexResponse struct {
	Success bool             `json:"success"`
	Count   int              `json:"count"`
	Failed  int              `json:"failed"`
	Results []BatchIndexItem `json:"results"`
}

// BatchSearchRequest is the body of POST /batch_search/. TopK follows the
// same rules as SearchRequest.TopK.
type BatchSearchRequest struct {
	Queries []string `json:"queries"`
	TopK    *int     `json:"top_k,omitempty"`
}

// SearchHit is one ranked result.
type SearchHit struct {
	DocID string  `json:"doc_id"`
	Score float32 `json:"score"`
	Text  string  `json:"text"`
}

// QueryResult groups the hits of one query. Search endpoints return a
// list of these in request order. Error is set, with no results, when the
// model could not embed that query; the other queries are unaffected.
type QueryResult struct {
	Query   string      `json:"query"`
	Results []SearchHit `json:"results"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string        `json:"status"`
	Details HealthDetails `json:"details"`
}

type HealthDetails struct {
	StoreStatus           string `json:"store_status"`
	Collection            string `json:"collection"`
	VectorSize            int    `json:"vector_size"`
	Distance              string `json:"distance"`
	Model                 string `json:"model"`
	CollectionPointsCount uint64 `json:"collection_points_count"`
	Error                 string `json:"error,omitempty"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Detail string `json:"detail"`
	Field  string `json:"field,omitempty"`
}
