package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/Aleph-Alpha/colbert-search/v1/embedding"
	"github.com/Aleph-Alpha/colbert-search/v1/logger"
	"github.com/Aleph-Alpha/colbert-search/v1/metrics"
	"github.com/Aleph-Alpha/colbert-search/v1/pgvector"
	"github.com/Aleph-Alpha/colbert-search/v1/pipeline"
	"github.com/Aleph-Alpha/colbert-search/v1/qdrant"
	"github.com/Aleph-Alpha/colbert-search/v1/server"
	"github.com/Aleph-Alpha/colbert-search/v1/tracer"
)

// Store backends selectable with STORE_BACKEND.
const (
	BackendQdrant   = "qdrant"
	BackendPgvector = "pgvector"
	BackendMemory   = "memory"
)

const serviceName = "colbert-search"

// Config is the complete service configuration. It is built once by Load
// and not modified afterwards.
type Config struct {
	StoreBackend string `yaml:"store_backend" envconfig:"STORE_BACKEND"`

	Logger    logger.Config    `yaml:"logger"`
	Metrics   metrics.Config   `yaml:"metrics"`
	Tracer    tracer.Config    `yaml:"tracer"`
	Embedding embedding.Config `yaml:"embedding"`
	Qdrant    qdrant.Config    `yaml:"qdrant"`
	Pgvector  pgvector.Config  `yaml:"pgvector"`
	Pipeline  pipeline.Config  `yaml:"pipeline"`
	Server    server.Config    `yaml:"server"`
}

// DefaultConfig returns a configuration that runs against a local Qdrant
// and inference server.
func DefaultConfig() *Config {
	return &Config{
		StoreBackend: BackendQdrant,
		Logger: logger.Config{
			Level:       logger.Info,
			ServiceName: serviceName,
		},
		Metrics: metrics.Config{
			Address:                 metrics.DefaultMetricsAddress,
			EnableDefaultCollectors: true,
			ServiceName:             serviceName,
		},
		Tracer: tracer.Config{
			ServiceName: serviceName,
			AppEnv:      "development",
		},
		Embedding: embedding.DefaultConfig(),
		Qdrant:    qdrant.DefaultConfig(),
		Pgvector:  pgvector.DefaultConfig(),
		Pipeline:  pipeline.DefaultConfig(),
		Server:    server.DefaultConfig(),
	}
}

// Load applies, in order: defaults, the YAML file at path (skipped when
// path is empty), and environment variables. The result is validated.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	// The hashing provider emits vectors of the collection's dimension.
	cfg.Embedding.Dimension = cfg.Pipeline.VectorSize

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv processes every section separately so that variables keep their
// flat names (QDRANT_HOST rather than QDRANT_QDRANT_HOST).
func (c *Config) applyEnv() error {
	var backend struct {
		StoreBackend string `envconfig:"STORE_BACKEND"`
	}
	sections := []any{
		&backend,
		&c.Logger,
		&c.Metrics,
		&c.Tracer,
		&c.Embedding,
		&c.Qdrant,
		&c.Pgvector,
		&c.Pipeline,
		&c.Server,
	}
	for _, s := range sections {
		if err := envconfig.Process("", s); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	if backend.StoreBackend != "" {
		c.StoreBackend = backend.StoreBackend
	}
	return nil
}

// Validate checks every section. Only the store backend in use is validated.
func (c *Config) Validate() error {
	errs := []error{
		c.Pipeline.Validate(),
		c.Server.Validate(),
		c.Embedding.Validate(),
	}

	switch c.StoreBackend {
	case BackendQdrant:
		errs = append(errs, c.Qdrant.Validate())
	case BackendPgvector:
		errs = append(errs, c.Pgvector.Validate())
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("config: unknown STORE_BACKEND %q (want qdrant, pgvector or memory)", c.StoreBackend))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: invalid configuration: %w", err)
	}
	return nil
}
