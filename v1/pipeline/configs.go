package pipeline

import (
	"fmt"

	"github.com/Aleph-Alpha/colbert-search/v1/vectordb"
)

// Config describes the single active collection and the request limits of
// the indexing and search pipelines.
type Config struct {
	// CollectionName is recreated empty at every start.
	CollectionName string `yaml:"collection_name" envconfig:"COLLECTION_NAME"`

	// VectorSize is the dimension D of every stored vector.
	VectorSize int `yaml:"vector_size" envconfig:"VECTOR_SIZE"`

	// Distance is cosine, dot or euclid.
	Distance string `yaml:"distance" envconfig:"DISTANCE"`

	// MaxBatchSize bounds the number of documents or queries per request.
	MaxBatchSize int `yaml:"max_batch_size" envconfig:"MAX_BATCH_SIZE"`

	// DefaultTopK applies when a search request omits top_k.
	DefaultTopK int `yaml:"default_top_k" envconfig:"DEFAULT_TOP_K"`

	// MaxTopK bounds top_k.
	MaxTopK int `yaml:"max_top_k" envconfig:"MAX_TOP_K"`
}

func DefaultConfig() Config {
	return Config{
		CollectionName: "colbert_docs",
		VectorSize:     128,
		Distance:       string(vectordb.Cosine),
		MaxBatchSize:   256,
		DefaultTopK:    3,
		MaxTopK:        100,
	}
}

// Validate checks the collection definition and limits.
func (c Config) Validate() error {
	if c.CollectionName == "" {
		return fmt.Errorf("pipeline: COLLECTION_NAME must not be empty")
	}
	if c.VectorSize <= 0 {
		return fmt.Errorf("pipeline: VECTOR_SIZE must be positive, got %d", c.VectorSize)
	}
	if _, err := vectordb.ParseDistance(c.Distance); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	if c.MaxBatchSize <= 0 {
		return fmt.Errorf("pipeline: MAX_BATCH_SIZE must be positive, got %d", c.MaxBatchSize)
	}
	if c.MaxTopK <= 0 {
		return fmt.Errorf("pipeline: MAX_TOP_K must be positive, got %d", c.MaxTopK)
	}
	if c.DefaultTopK < 1 || c.DefaultTopK > c.MaxTopK {
		return fmt.Errorf("pipeline: DEFAULT_TOP_K must be between 1 and MAX_TOP_K (%d), got %d", c.MaxTopK, c.DefaultTopK)
	}
	return nil
}
