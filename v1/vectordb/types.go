package vectordb

// Payload keys written with every point.
const (
	PayloadDocID = "doc_id"
	PayloadText  = "text"
)

// SearchRequest represents a single similarity search query.
type SearchRequest struct {
	// CollectionName is the target collection to search in
	CollectionName string `json:"collectionName"`

	// Vector is the query embedding
	Vector []float32 `json:"vector"`

	// TopK is the maximum number of results to return
	TopK int `json:"maxResults"`
}

// SearchResult represents a single hit with its similarity score.
type SearchResult struct {
	// ID is the caller-facing document id (the doc_id payload field when present)
	ID string `json:"id"`

	// Score is the similarity score; higher is more similar for every Distance
	Score float32 `json:"score"`

	// Payload contains the metadata stored with the vector
	Payload map[string]any `json:"payload"`
}

// Text returns the "text" payload field, or "" if absent.
func (r SearchResult) Text() string {
	s, _ := r.Payload[PayloadText].(string)
	return s
}

// EmbeddingInput is a point to be upserted.
type EmbeddingInput struct {
	// ID is the caller-supplied document id
	ID string `json:"id"`

	// Vector is the dense embedding
	Vector []float32 `json:"vector"`

	// Payload is stored alongside the vector
	Payload map[string]any `json:"payload,omitempty"`
}

// Collection contains metadata about a vector collection.
type Collection struct {
	Name       string `json:"name"`
	Status     string `json:"status"`
	VectorSize int    `json:"vectorSize"`
	Distance   string `json:"distance"`
	PointCount uint64 `json:"pointCount"`
}
