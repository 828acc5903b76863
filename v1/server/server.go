package server

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/fx"

	"github.com/Aleph-Alpha/colbert-search/v1/embedding"
	"github.com/Aleph-Alpha/colbert-search/v1/gate"
	"github.com/Aleph-Alpha/colbert-search/v1/logger"
	"github.com/Aleph-Alpha/colbert-search/v1/metrics"
	"github.com/Aleph-Alpha/colbert-search/v1/pipeline"
)

// Params defines the dependencies of the HTTP API.
type Params struct {
	fx.In

	Config      Config
	Indexer     *pipeline.Indexer
	Searcher    *pipeline.Searcher
	Collections *pipeline.Collections
	Embedder    embedding.Embedder
	Metrics     metrics.MetricsCollector
	Logger      logger.Logger
}

// Server serves the indexing and search API.
type Server struct {
	cfg         Config
	gate        *gate.Gate
	indexer     *pipeline.Indexer
	searcher    *pipeline.Searcher
	collections *pipeline.Collections
	embedder    embedding.Embedder
	metrics     metrics.MetricsCollector
	log         logger.Logger

	// HTTP is the listener; it is started by the fx lifecycle.
	HTTP *http.Server
}

// New validates cfg and builds the handler tree.
func New(p Params) (*Server, error) {
	if err := p.Config.Validate(); err != nil {
		return nil, err
	}

	s := &Server{
		cfg:         p.Config,
		gate:        gate.New(p.Config.APIKey),
		indexer:     p.Indexer,
		searcher:    p.Searcher,
		collections: p.Collections,
		embedder:    p.Embedder,
		metrics:     p.Metrics,
		log:         p.Logger,
	}
	s.HTTP = &http.Server{
		Addr:              p.Config.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: p.Config.ReadHeaderTimeout,
	}
	return s, nil
}

// Handler returns the full middleware chain: tracing, request metrics,
// routing, and the access gate on every protected route.
func (s *Server) Handler() http.Handler {
	protect := s.gate.Middleware(s.rejectUnauthorized)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	routes := map[string]http.HandlerFunc{
		"/index/":        s.handleIndex,
		"/search/":       s.handleSearch,
		"/batch_index/":  s.handleBatchIndex,
		"/batch_search/": s.handleBatchSearch,
	}
	for path, h := range routes {
		handler := protect(s.limitBody(h))
		mux.Handle("POST "+path+"{$}", handler)
		mux.Handle("POST "+path[:len(path)-1], handler)
	}

	return otelhttp.NewHandler(s.instrument(mux), "colbert-search")
}

// limitBody caps the request body and bounds the wait for the pipeline.
func (s *Server) limitBody(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
		if s.cfg.RequestTimeout > 0 {
			ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
			defer cancel()
			r = r.WithContext(ctx)
		}
		next(w, r)
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		endpoint := r.Pattern
		if endpoint == "" {
			endpoint = "unmatched"
		}
		s.metrics.RecordRequestDuration(start, endpoint)
		s.metrics.IncrementRequests(statusClass(rec.status))
	})
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
