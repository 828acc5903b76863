package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// IncrementRequests increments the request counter with a given status label.
// Example: metrics.IncrementRequests("2xx")
func (m *Metrics) IncrementRequests(status string) {
	m.requestsTotal.WithLabelValues(status).Inc()
}

// RecordRequestDuration records the duration (in seconds) for a request endpoint.
// Example: defer metrics.RecordRequestDuration(time.Now(), "/search/")
func (m *Metrics) RecordRequestDuration(start time.Time, endpoint string) {
	m.requestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

// ObserveEmbedding records the latency and size of one adapter call.
func (m *Metrics) ObserveEmbedding(start time.Time, kind string, texts int) {
	m.embeddingDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	m.embeddingTexts.WithLabelValues(kind).Add(float64(texts))
}

// IncrementIndexed adds n documents with the given outcome.
func (m *Metrics) IncrementIndexed(result string, n int) {
	if n <= 0 {
		return
	}
	m.documentsIndexed.WithLabelValues(result).Add(float64(n))
}

// ObserveSearchResults records the size of one query's result list.
func (m *Metrics) ObserveSearchResults(n int) {
	m.searchResults.Observe(float64(n))
}

// IncrementCollectionRecreations counts one startup reset of collection.
func (m *Metrics) IncrementCollectionRecreations(collection string) {
	m.collectionRecreations.WithLabelValues(collection).Inc()
}

func createCounterVec(namespace, name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		},
		labels,
	)
}

func createHistogramVec(namespace, name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
			Buckets:   buckets,
		},
		labels,
	)
}
