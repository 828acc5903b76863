package embedding

import (
	"fmt"
	"time"
)

const (
	ProviderInference = "inference"
	ProviderHashing   = "hashing"
)

// Config selects and configures the embedding provider.
//
// EMBEDDING_ENDPOINT must point to the root of the inference sidecar (no
// /embeddings appended); the provider appends the path itself.
type Config struct {
	// Provider is "inference" (HTTP model server) or "hashing" (local, no model).
	Provider string `yaml:"provider" envconfig:"EMBEDDING_PROVIDER"`

	// Model is the identifier forwarded to the inference server.
	Model string `yaml:"model" envconfig:"MODEL_NAME"`

	// Endpoint is the base URL of the inference server.
	Endpoint string `yaml:"endpoint" envconfig:"EMBEDDING_ENDPOINT"`

	// ServiceToken is sent as a bearer token when set.
	ServiceToken string `yaml:"service_token" envconfig:"EMBEDDING_SERVICE_TOKEN"`

	// HTTPTimeout bounds a single inference request.
	HTTPTimeout time.Duration `yaml:"http_timeout" envconfig:"EMBEDDING_HTTP_TIMEOUT"`

	// Workers is the number of inference calls allowed in flight at once.
	Workers int `yaml:"workers" envconfig:"INFERENCE_WORKERS"`

	// Dimension is the token vector width produced by the hashing provider.
	// It is filled from the collection's vector size.
	Dimension int `yaml:"-" envconfig:"VECTOR_SIZE"`
}

// DefaultConfig mirrors the production model deployment.
func DefaultConfig() Config {
	return Config{
		Provider:    ProviderInference,
		Model:       "LiquidAI/LFM2-ColBERT-350M",
		Endpoint:    "http://localhost:8080",
		HTTPTimeout: 30 * time.Second,
		Workers:     4,
		Dimension:   128,
	}
}

// Validate ensures required fields are present for the selected provider.
func (c *Config) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("embedding: INFERENCE_WORKERS must be positive, got %d", c.Workers)
	}
	switch c.Provider {
	case ProviderInference:
		if c.Endpoint == "" {
			return fmt.Errorf("embedding: missing EMBEDDING_ENDPOINT")
		}
		if c.Model == "" {
			return fmt.Errorf("embedding: missing MODEL_NAME")
		}
	case ProviderHashing:
		if c.Dimension <= 0 {
			return fmt.Errorf("embedding: hashing provider needs a positive dimension")
		}
	default:
		return fmt.Errorf("embedding: unknown provider %q", c.Provider)
	}
	return nil
}
