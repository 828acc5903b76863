package pipeline

import (
	"context"
	"fmt"

	"github.com/Aleph-Alpha/colbert-search/v1/logger"
	"github.com/Aleph-Alpha/colbert-search/v1/metrics"
	"github.com/Aleph-Alpha/colbert-search/v1/vectordb"
)

// Collections manages the single configured collection.
type Collections struct {
	store    vectordb.Service
	name     string
	size     int
	distance vectordb.Distance
	metrics  metrics.MetricsCollector
	log      logger.Logger
}

// NewCollections validates the collection definition. It does not touch
// the store; Recreate runs from the fx OnStart hook.
func NewCollections(p Params) (*Collections, error) {
	if err := p.Config.Validate(); err != nil {
		return nil, err
	}
	distance, err := vectordb.ParseDistance(p.Config.Distance)
	if err != nil {
		return nil, err
	}
	return &Collections{
		store:    p.Store,
		name:     p.Config.CollectionName,
		size:     p.Config.VectorSize,
		distance: distance,
		metrics:  p.Metrics,
		log:      p.Logger,
	}, nil
}

// Recreate drops the collection if it exists and creates it empty. All
// previously indexed documents are lost.
func (c *Collections) Recreate(ctx context.Context) error {
	c.log.WarnWithContext(ctx, "Recreating collection, existing points are discarded", nil, map[string]interface{}{
		"collection":  c.name,
		"vector_size": c.size,
		"distance":    string(c.distance),
	})

	if err := c.store.RecreateCollection(ctx, c.name, uint64(c.size), c.distance); err != nil {
		return &StoreError{Op: "recreate collection", Err: err}
	}

	c.metrics.IncrementCollectionRecreations(c.name)
	c.log.InfoWithContext(ctx, "Collection ready", nil, map[string]interface{}{
		"collection": c.name,
	})
	return nil
}

// Info reads the collection's metadata and point count from the store.
func (c *Collections) Info(ctx context.Context) (*vectordb.Collection, error) {
	info, err := c.store.GetCollection(ctx, c.name)
	if err != nil {
		return nil, &StoreError{Op: "get collection", Err: err}
	}
	return info, nil
}

// Name returns the collection name.
func (c *Collections) Name() string { return c.name }

// VectorSize returns the configured dimension D.
func (c *Collections) VectorSize() int { return c.size }

// Distance returns the configured metric.
func (c *Collections) Distance() vectordb.Distance { return c.distance }

func (c *Collections) String() string {
	return fmt.Sprintf("%s(%d, %s)", c.name, c.size, c.distance)
}
