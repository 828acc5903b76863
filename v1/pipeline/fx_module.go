package pipeline

import (
	"context"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/colbert-search/v1/embedding"
	"github.com/Aleph-Alpha/colbert-search/v1/logger"
	"github.com/Aleph-Alpha/colbert-search/v1/metrics"
	"github.com/Aleph-Alpha/colbert-search/v1/tracer"
	"github.com/Aleph-Alpha/colbert-search/v1/vectordb"
)

// FXModule provides Collections, Indexer and Searcher and recreates the
// collection on start.
//
// Include it before any module whose OnStart hook serves traffic: fx runs
// start hooks in registration order, so the collection is ready before the
// listener accepts requests.
//
// Dependencies required by this module:
// - A pipeline.Config instance
// - An embedding.Embedder, a vectordb.Service, a metrics.MetricsCollector,
//   a logger.Logger and a *tracer.Tracer
var FXModule = fx.Module("pipeline",
	fx.Provide(
		NewCollections,
		NewIndexer,
		NewSearcher,
	),
	fx.Invoke(RegisterCollectionsLifecycle),
)

// Params defines the dependencies shared by the pipeline components.
type Params struct {
	fx.In

	Config   Config
	Embedder embedding.Embedder
	Store    vectordb.Service
	Metrics  metrics.MetricsCollector
	Logger   logger.Logger
	Tracer   *tracer.Tracer
}

// RegisterCollectionsLifecycle recreates the collection once on start.
func RegisterCollectionsLifecycle(lc fx.Lifecycle, c *Collections) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return c.Recreate(ctx)
		},
	})
}
