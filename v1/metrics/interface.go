package metrics

import "time"

// MetricsCollector is the subset of *Metrics the pipelines and HTTP server
// depend on.
type MetricsCollector interface {
	// IncrementRequests counts a finished HTTP request by status class.
	IncrementRequests(status string)

	// RecordRequestDuration records the latency of an endpoint since start.
	RecordRequestDuration(start time.Time, endpoint string)

	// ObserveEmbedding records one adapter call for the given text kind.
	ObserveEmbedding(start time.Time, kind string, texts int)

	// IncrementIndexed counts documents by indexing outcome ("indexed" or "failed").
	IncrementIndexed(result string, n int)

	// ObserveSearchResults records how many results a single query returned.
	ObserveSearchResults(n int)

	// IncrementCollectionRecreations counts startup collection resets.
	IncrementCollectionRecreations(collection string)
}
