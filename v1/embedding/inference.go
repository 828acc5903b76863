package embedding

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// InferenceProvider calls a late-interaction model server over HTTP.
//
// Request:  POST {endpoint}/embeddings {"model", "input": [...], "is_query": bool}
// Response: {"data": [{"index": i, "embedding": [[token vector], ...]}]}
type InferenceProvider struct {
	baseURL      string
	model        string
	serviceToken string
	httpClient   *http.Client
}

func newInferenceProvider(cfg Config) (*InferenceProvider, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("inference: missing EMBEDDING_ENDPOINT")
	}

	return &InferenceProvider{
		baseURL:      strings.TrimRight(cfg.Endpoint, "/"),
		model:        cfg.Model,
		serviceToken: cfg.ServiceToken,
		httpClient:   &http.Client{Timeout: cfg.HTTPTimeout},
	}, nil
}

type inferenceRequest struct {
	Model   string   `json:"model"`
	Input   []string `json:"input"`
	IsQuery bool     `json:"is_query"`
}

type inferenceResponse struct {
	Data []struct {
		Index     int         `json:"index"`
		Embedding [][]float32 `json:"embedding"`
	} `json:"data"`
}

// Embed sends all texts in a single request.
func (p *InferenceProvider) Embed(ctx context.Context, texts []string, kind Kind) ([]Tensor, error) {
	if len(texts) == 0 {
		return []Tensor{}, nil
	}

	var parsed inferenceResponse
	url := p.baseURL + "/embeddings"
	body := inferenceRequest{Model: p.model, Input: texts, IsQuery: kind == KindQuery}
	if err := p.postJSON(ctx, url, body, &parsed); err != nil {
		return nil, fmt.Errorf("inference: %w", err)
	}

	if len(parsed.Data) != len(texts) {
		return nil, fmt.Errorf("inference: expected %d embeddings, got %d", len(texts), len(parsed.Data))
	}

	out := make([]Tensor, len(texts))
	seen := make([]bool, len(texts))
	for _, d := range parsed.Data {
		if d.Index < 0 || d.Index >= len(texts) || seen[d.Index] {
			return nil, fmt.Errorf("inference: invalid or duplicate index %d in response", d.Index)
		}
		seen[d.Index] = true
		out[d.Index] = d.Embedding
	}
	return out, nil
}

// Model returns the configured model identifier.
func (p *InferenceProvider) Model() string {
	return p.model
}

// Close releases idle keep-alive connections.
func (p *InferenceProvider) Close() error {
	p.httpClient.CloseIdleConnections()
	return nil
}
