package app

import (
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/Aleph-Alpha/colbert-search/v1/config"
	"github.com/Aleph-Alpha/colbert-search/v1/embedding"
	"github.com/Aleph-Alpha/colbert-search/v1/logger"
	"github.com/Aleph-Alpha/colbert-search/v1/memstore"
	"github.com/Aleph-Alpha/colbert-search/v1/metrics"
	"github.com/Aleph-Alpha/colbert-search/v1/pgvector"
	"github.com/Aleph-Alpha/colbert-search/v1/pipeline"
	"github.com/Aleph-Alpha/colbert-search/v1/qdrant"
	"github.com/Aleph-Alpha/colbert-search/v1/server"
	"github.com/Aleph-Alpha/colbert-search/v1/tracer"
	"github.com/Aleph-Alpha/colbert-search/v1/vectordb"
)

// Module wires the complete service for cfg. Module order matters: the
// pipeline recreates the collection in its start hook, which has to run
// before the HTTP listener opens.
func Module(cfg *config.Config) fx.Option {
	return fx.Options(
		config.Module(cfg),
		logger.FXModule,
		fx.WithLogger(func(l *logger.LoggerClient) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: l.Zap}
		}),
		tracer.FXModule,
		metrics.FXModule,
		embedding.FXModule,
		StoreModule(cfg.StoreBackend),
		pipeline.FXModule,
		server.FXModule,
	)
}

// StoreModule provides vectordb.Service for the named backend.
func StoreModule(backend string) fx.Option {
	switch backend {
	case config.BackendQdrant:
		return fx.Options(
			qdrant.FXModule,
			fx.Provide(func(a *qdrant.Adapter) vectordb.Service { return a }),
		)
	case config.BackendPgvector:
		return fx.Options(
			pgvector.FXModule,
			fx.Provide(func(a *pgvector.Adapter) vectordb.Service { return a }),
		)
	case config.BackendMemory:
		return fx.Module("memstore",
			fx.Provide(func() vectordb.Service { return memstore.New() }),
		)
	default:
		return fx.Error(fmt.Errorf("app: unknown store backend %q", backend))
	}
}

// New builds the fx application. Call Run on the result to serve until a
// termination signal arrives.
func New(cfg *config.Config, extra ...fx.Option) *fx.App {
	return fx.New(append([]fx.Option{Module(cfg)}, extra...)...)
}
