package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Aleph-Alpha/colbert-search/v1/gate"
	"github.com/Aleph-Alpha/colbert-search/v1/server"
)

const defaultTimeout = 2 * time.Minute

// APIError is returned for every non-2xx response.
type APIError struct {
	StatusCode int
	Detail     string
	Field      string
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("colbert-search: %d %s (field %s)", e.StatusCode, e.Detail, e.Field)
	}
	return fmt.Sprintf("colbert-search: %d %s", e.StatusCode, e.Detail)
}

// Client talks to a running colbert-search API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default instrumented HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// New returns a client for the API at baseURL. apiKey is sent in the
// X-API-Key header of every protected call.
func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http: &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Health reports the service status. A 503 still returns the decoded body
// together with an *APIError.
func (c *Client) Health(ctx context.Context) (*server.HealthResponse, error) {
	var out server.HealthResponse
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("colbert-search: decode health response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return &out, &APIError{StatusCode: resp.StatusCode, Detail: out.Details.Error}
	}
	return &out, nil
}

// Index stores a single document.
func (c *Client) Index(ctx context.Context, docID, text string) (*server.IndexResponse, error) {
	var out server.IndexResponse
	in := server.IndexRequest{DocID: docID, Text: text}
	if err := c.post(ctx, "/index/", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// BatchIndex stores docs in one call. Per-document failures are reported
// in the response, not as an error.
func (c *Client) BatchIndex(ctx context.Context, docs []server.IndexRequest) (*server.BatchIndexResponse, error) {
	var out server.BatchIndexResponse
	if err := c.post(ctx, "/batch_index/", server.BatchIndexRequest{Docs: docs}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Search runs queries through /search/. A non-positive topK lets the
// server apply its default.
func (c *Client) Search(ctx context.Context, queries []string, topK int) ([]server.QueryResult, error) {
	var out []server.QueryResult
	in := server.SearchRequest{QueryTexts: queries, TopK: optionalTopK(topK)}
	if err := c.post(ctx, "/search/", in, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// BatchSearch runs queries through /batch_search/.
func (c *Client) BatchSearch(ctx context.Context, queries []string, topK int) ([]server.QueryResult, error) {
	var out []server.QueryResult
	in := server.BatchSearchRequest{Queries: queries, TopK: optionalTopK(topK)}
	if err := c.post(ctx, "/batch_search/", in, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, path string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(gate.HeaderName, c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("colbert-search: decode %s response: %w", path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		apiErr.Detail = http.StatusText(resp.StatusCode)
		return apiErr
	}

	var body server.ErrorResponse
	if err := json.Unmarshal(raw, &body); err != nil || body.Detail == "" {
		apiErr.Detail = strings.TrimSpace(string(raw))
		if apiErr.Detail == "" {
			apiErr.Detail = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}
	apiErr.Detail = body.Detail
	apiErr.Field = body.Field
	return apiErr
}

func optionalTopK(k int) *int {
	if k <= 0 {
		return nil
	}
	return &k
}

// IsStatus reports whether err is an *APIError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}
