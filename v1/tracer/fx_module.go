package tracer

import (
	"context"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/colbert-search/v1/logger"
)

// FXModule provides *Tracer and flushes it on shutdown.
//
// Dependencies required by this module:
// - A tracer.Config instance
// - A logger.Logger instance
var FXModule = fx.Module("tracer",
	fx.Provide(
		NewClient,
	),
	fx.Invoke(RegisterTracerLifecycle),
)

// RegisterTracerLifecycle shuts the provider down when the app stops so
// batched spans are exported.
func RegisterTracerLifecycle(lc fx.Lifecycle, tracer *Tracer, log logger.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down tracer", nil, nil)
			return tracer.Shutdown(ctx)
		},
	})
}
