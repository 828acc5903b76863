package pgvector

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"

	"github.com/Aleph-Alpha/colbert-search/v1/logger"
)

// FXModule provides the connection pool and an *Adapter using it.
//
// Dependencies required by this module:
// - A pgvector.Config instance
// - A logger.Logger instance
var FXModule = fx.Module("pgvector",
	fx.Provide(
		NewPool,
		NewAdapter,
	),
	fx.Invoke(RegisterPgvectorLifecycle),
)

// RegisterPgvectorLifecycle closes the pool on stop.
func RegisterPgvectorLifecycle(lc fx.Lifecycle, pool *pgxpool.Pool, log logger.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			pool.Close()
			log.Info("PostgreSQL pool closed", nil, nil)
			return nil
		},
	})
}
