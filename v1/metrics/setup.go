package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the isolated registry and the HTTP server exposing it.
type Metrics struct {
	// Server serves /metrics for Prometheus scraping.
	Server *http.Server

	// Registry is private to this service to avoid name collisions.
	Registry *prometheus.Registry

	namespace string

	requestsTotal         *prometheus.CounterVec
	requestDuration       *prometheus.HistogramVec
	embeddingDuration     *prometheus.HistogramVec
	embeddingTexts        *prometheus.CounterVec
	documentsIndexed      *prometheus.CounterVec
	searchResults         prometheus.Histogram
	collectionRecreations *prometheus.CounterVec
}

// NewMetrics creates the registry, registers the service metrics under a
// constant "service" label and prepares (but does not start) the HTTP server.
//
// Example:
//
//	m := metrics.NewMetrics(metrics.Config{Address: ":9090", ServiceName: "colbert-search"})
//	go m.Server.ListenAndServe()
func NewMetrics(cfg Config) *Metrics {
	registry := prometheus.NewRegistry()

	wrappedRegistry := prometheus.WrapRegistererWith(
		prometheus.Labels{"service": cfg.ServiceName},
		registry,
	)

	m := &Metrics{
		Registry:  registry,
		namespace: cfg.Namespace,
	}

	m.requestsTotal = createCounterVec(cfg.Namespace, "requests_total", "Total number of processed requests", []string{"status"})
	m.requestDuration = createHistogramVec(cfg.Namespace, "request_duration_seconds", "Duration of HTTP requests in seconds", []string{"endpoint"}, prometheus.DefBuckets)
	m.embeddingDuration = createHistogramVec(cfg.Namespace, "embedding_duration_seconds", "Duration of embedding model calls in seconds", []string{"kind"}, prometheus.ExponentialBuckets(0.01, 2, 12))
	m.embeddingTexts = createCounterVec(cfg.Namespace, "embedding_texts_total", "Number of texts sent to the embedding model", []string{"kind"})
	m.documentsIndexed = createCounterVec(cfg.Namespace, "documents_indexed_total", "Documents processed by the indexing pipeline", []string{"result"})
	m.searchResults = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: cfg.Namespace,
		Name:      "search_results_returned",
		Help:      "Number of results returned per query",
		Buckets:   []float64{0, 1, 3, 5, 10, 25, 50, 100},
	})
	m.collectionRecreations = createCounterVec(cfg.Namespace, "collection_recreations_total", "Collections dropped and recreated at startup", []string{"collection"})

	wrappedRegistry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.embeddingDuration,
		m.embeddingTexts,
		m.documentsIndexed,
		m.searchResults,
		m.collectionRecreations,
	)

	if cfg.EnableDefaultCollectors {
		wrappedRegistry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewBuildInfoCollector(),
		)
	}

	address := cfg.Address
	if address == "" {
		address = DefaultMetricsAddress
	}

	m.Server = &http.Server{
		Addr:    address,
		Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}
	return m
}
