package qdrant

import (
	"fmt"
	"time"
)

// Config holds connection and behaviour settings for the Qdrant client.
//
// Example (programmatic):
//
//	cfg := qdrant.DefaultConfig()
//	cfg.Host = "qdrant.internal"
//	cfg.APIKey = os.Getenv("QDRANT_API_KEY")
type Config struct {
	// Hostname of the Qdrant server, e.g. "localhost".
	Host string `yaml:"host" envconfig:"QDRANT_HOST"`

	// gRPC port of the Qdrant server. Defaults to 6334; Qdrant's REST port
	// (6333) does not work here.
	Port int `yaml:"grpc_port" envconfig:"QDRANT_GRPC_PORT"`

	// Optional authentication token for secured deployments.
	APIKey string `yaml:"api_key" envconfig:"QDRANT_API_KEY"`

	// Dial with TLS.
	UseTLS bool `yaml:"use_tls" envconfig:"QDRANT_USE_TLS"`

	// Bounds the startup health check.
	ConnectTimeout time.Duration `yaml:"connect_timeout" envconfig:"QDRANT_CONNECT_TIMEOUT"`

	// Number of points sent per Upsert call.
	UpsertBatchSize int `yaml:"upsert_batch_size" envconfig:"QDRANT_UPSERT_BATCH_SIZE"`

	// Whether to perform version compatibility checks between client and server.
	CheckCompatibility bool `yaml:"check_compatibility" envconfig:"QDRANT_CHECK_COMPATIBILITY"`
}

// DefaultConfig targets a local Qdrant on its default gRPC port.
func DefaultConfig() Config {
	return Config{
		Host:            "localhost",
		Port:            6334,
		ConnectTimeout:  5 * time.Second,
		UpsertBatchSize: defaultBatchSize,
	}
}

// Validate checks the fields required to dial.
func (c Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("qdrant: missing QDRANT_HOST")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("qdrant: invalid QDRANT_GRPC_PORT %d", c.Port)
	}
	return nil
}
