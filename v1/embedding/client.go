package embedding

import "fmt"

// NewEmbedder validates cfg, builds the configured provider and wraps it in a
// worker Pool. Application code depends on the Embedder interface only.
func NewEmbedder(cfg Config) (*Pool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("embedding: invalid config: %w", err)
	}

	var provider Embedder
	switch cfg.Provider {
	case ProviderHashing:
		provider = NewHashingProvider(cfg.Dimension)
	default:
		p, err := newInferenceProvider(cfg)
		if err != nil {
			return nil, fmt.Errorf("embedding: failed to create provider: %w", err)
		}
		provider = p
	}

	return NewPool(provider, cfg.Workers), nil
}
