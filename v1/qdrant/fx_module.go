package qdrant

import (
	"context"
	"sync"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/colbert-search/v1/logger"
)

// FXModule provides *QdrantClient and an *Adapter bound to it, and closes
// the connection on shutdown.
//
// Usage:
//
//	app := fx.New(
//	    qdrant.FXModule,
//	    fx.Provide(func(a *qdrant.Adapter) vectordb.Service { return a }),
//	)
//
// Dependencies required by this module:
// - A qdrant.Config instance
// - A logger.Logger instance
var FXModule = fx.Module("qdrant",
	fx.Provide(
		NewQdrantClient,
		NewAdapterFromClient,
	),
	fx.Invoke(RegisterQdrantLifecycle),
)

// RegisterQdrantLifecycle closes the client exactly once on stop.
func RegisterQdrantLifecycle(lc fx.Lifecycle, client *QdrantClient, log logger.Logger) {
	var once sync.Once

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			var err error
			once.Do(func() {
				err = client.Close()
				log.Info("Qdrant client connection closed", err, nil)
			})
			return err
		},
	})
}
