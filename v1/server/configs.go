package server

import (
	"fmt"
	"time"
)

// DefaultAPIKey is the documented insecure fallback secret. Deployments
// must override it with API_KEY.
const DefaultAPIKey = "change_this_key"

// Config configures the HTTP API.
type Config struct {
	// Address is the listen address, e.g. ":8000".
	Address string `yaml:"address" envconfig:"SERVER_ADDRESS"`

	// APIKey is the shared secret expected in X-API-Key.
	APIKey string `yaml:"api_key" envconfig:"API_KEY"`

	// RequestTimeout bounds how long a client waits for a pipeline call.
	// In-flight inference and store calls are not cancelled by it.
	RequestTimeout time.Duration `yaml:"request_timeout" envconfig:"SERVER_REQUEST_TIMEOUT"`

	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" envconfig:"SERVER_READ_HEADER_TIMEOUT"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout" envconfig:"SERVER_SHUTDOWN_TIMEOUT"`

	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64 `yaml:"max_body_bytes" envconfig:"SERVER_MAX_BODY_BYTES"`
}

func DefaultConfig() Config {
	return Config{
		Address:           ":8000",
		APIKey:            DefaultAPIKey,
		RequestTimeout:    120 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		ShutdownTimeout:   15 * time.Second,
		MaxBodyBytes:      32 << 20,
	}
}

// Validate checks the listener settings. An insecure API key is not an
// error; config.Load logs a warning for it.
func (c Config) Validate() error {
	if c.Address == "" {
		return fmt.Errorf("server: SERVER_ADDRESS must not be empty")
	}
	if c.APIKey == "" {
		return fmt.Errorf("server: API_KEY must not be empty")
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("server: SERVER_MAX_BODY_BYTES must be positive")
	}
	return nil
}

// InsecureAPIKey reports whether the default secret is still in use.
func (c Config) InsecureAPIKey() bool {
	return c.APIKey == DefaultAPIKey
}
