package pgvector

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"

	"github.com/Aleph-Alpha/colbert-search/v1/logger"
)

// collectionsTable records vector size and distance for every collection
// table, since neither can be read back cheaply from the table itself.
const collectionsTable = "colbert_collections"

// PgvectorParams defines dependencies needed to construct the pool.
type PgvectorParams struct {
	fx.In

	Config Config
	Logger logger.Logger
}

// NewPool opens a connection pool, verifies connectivity and makes sure the
// vector extension and the collection registry exist.
func NewPool(p PgvectorParams) (*pgxpool.Pool, error) {
	if err := p.Config.Validate(); err != nil {
		return nil, err
	}

	poolCfg, err := pgxpool.ParseConfig(p.Config.DSN)
	if err != nil {
		return nil, fmt.Errorf("[pgvector] invalid DSN: %w", err)
	}
	if p.Config.MaxConns > 0 {
		poolCfg.MaxConns = p.Config.MaxConns
	}

	ctx := context.Background()
	if p.Config.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Config.ConnectTimeout)
		defer cancel()
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("[pgvector] failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("[pgvector] ping failed: %w", err)
	}

	if err := migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	p.Logger.Info("Connected to PostgreSQL", nil, map[string]interface{}{
		"host":     poolCfg.ConnConfig.Host,
		"database": poolCfg.ConnConfig.Database,
	})
	return pool, nil
}

func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	migrations := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS ` + collectionsTable + ` (
			name        TEXT PRIMARY KEY,
			vector_size INTEGER NOT NULL,
			distance    TEXT NOT NULL
		)`,
	}
	for _, m := range migrations {
		if _, err := pool.Exec(ctx, m); err != nil {
			return fmt.Errorf("[pgvector] migration failed: %w", err)
		}
	}
	return nil
}
