package embedding

import (
	"context"

	"go.uber.org/fx"
)

// FXModule provides *Pool and the Embedder interface.
//
// Dependencies required by this module:
// - An embedding.Config instance
var FXModule = fx.Module(
	"embedding",

	fx.Provide(
		NewEmbedder,
		func(p *Pool) Embedder { return p },
	),

	fx.Invoke(RegisterEmbeddingLifecycle),
)

// RegisterEmbeddingLifecycle releases provider resources on shutdown.
func RegisterEmbeddingLifecycle(lc fx.Lifecycle, pool *Pool) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return pool.Close()
		},
	})
}
