package config

import "go.uber.org/fx"

// Module supplies every configuration section to the fx graph.
func Module(cfg *Config) fx.Option {
	return fx.Module("config",
		fx.Supply(
			cfg.Logger,
			cfg.Metrics,
			cfg.Tracer,
			cfg.Embedding,
			cfg.Qdrant,
			cfg.Pgvector,
			cfg.Pipeline,
			cfg.Server,
		),
	)
}
