package qdrant

import (
	"context"
	"fmt"
	"time"

	qdrant "github.com/qdrant/go-client/qdrant"
	"go.uber.org/fx"

	"github.com/Aleph-Alpha/colbert-search/v1/logger"
)

const (
	defaultPort      = 6334
	defaultBatchSize = 200 // default chunk size for batch upserts
)

// QdrantClient wraps the official Qdrant Go client and owns the gRPC
// connection. Collection and point operations go through Adapter.
type QdrantClient struct {
	api *qdrant.Client
	cfg Config
	log logger.Logger
}

// QdrantParams defines dependencies needed to construct the Qdrant client.
type QdrantParams struct {
	fx.In

	Config Config
	Logger logger.Logger
}

// NewQdrantClient dials Qdrant and runs a health check so that an
// unreachable store fails startup instead of the first request.
func NewQdrantClient(p QdrantParams) (*QdrantClient, error) {
	cfg := p.Config
	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p.Logger.Info("Connecting to Qdrant", nil, map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
	})

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:                   cfg.Host,
		Port:                   cfg.Port,
		APIKey:                 cfg.APIKey,
		UseTLS:                 cfg.UseTLS,
		SkipCompatibilityCheck: !cfg.CheckCompatibility,
	})
	if err != nil {
		return nil, fmt.Errorf("[Qdrant] failed to initialize client: %w", err)
	}

	qc := &QdrantClient{api: client, cfg: cfg, log: p.Logger}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := qc.HealthCheck(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}

	return qc, nil
}

// HealthCheck calls the Qdrant health endpoint through the SDK.
func (c *QdrantClient) HealthCheck(ctx context.Context) error {
	if c.api == nil {
		return fmt.Errorf("[Qdrant] client not initialized")
	}

	resp, err := c.api.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("[Qdrant] health check failed: %w", err)
	}

	c.log.Info("Qdrant health check passed", nil, map[string]interface{}{
		"title":   resp.GetTitle(),
		"version": resp.GetVersion(),
		"host":    c.cfg.Host,
	})
	return nil
}

// Client returns the underlying Qdrant SDK client.
func (c *QdrantClient) Client() *qdrant.Client {
	return c.api
}

// Close shuts down the gRPC connection.
func (c *QdrantClient) Close() error {
	if c.api == nil {
		return nil
	}
	return c.api.Close()
}
