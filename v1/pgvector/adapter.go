package pgvector

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/Aleph-Alpha/colbert-search/v1/vectordb"
)

// Adapter implements vectordb.Service on PostgreSQL with pgvector. Every
// collection is a table with doc_id as primary key.
type Adapter struct {
	pool        *pgxpool.Pool
	concurrency int

	mu   sync.RWMutex
	meta map[string]collectionMeta
}

type collectionMeta struct {
	vectorSize int
	distance   vectordb.Distance
}

var _ vectordb.Service = (*Adapter)(nil)

// NewAdapter wraps an open pool.
func NewAdapter(pool *pgxpool.Pool, cfg Config) *Adapter {
	concurrency := cfg.SearchConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Adapter{
		pool:        pool,
		concurrency: concurrency,
		meta:        make(map[string]collectionMeta),
	}
}

// RecreateCollection drops and recreates the collection table and its HNSW
// index in a single transaction.
func (a *Adapter) RecreateCollection(ctx context.Context, name string, vectorSize uint64, distance vectordb.Distance) error {
	if name == "" {
		return fmt.Errorf("collection name cannot be empty")
	}
	if vectorSize == 0 {
		return fmt.Errorf("vector size must be greater than 0")
	}
	_, opclass, err := operator(distance)
	if err != nil {
		return err
	}

	table := tableName(name)
	err = pgx.BeginFunc(ctx, a.pool, func(tx pgx.Tx) error {
		stmts := []string{
			`DROP TABLE IF EXISTS ` + table,
			fmt.Sprintf(`CREATE TABLE %s (
				doc_id    TEXT PRIMARY KEY,
				text      TEXT NOT NULL DEFAULT '',
				payload   JSONB NOT NULL DEFAULT '{}',
				embedding vector(%d) NOT NULL
			)`, table, vectorSize),
			fmt.Sprintf(`CREATE INDEX %s ON %s USING hnsw (embedding %s)`, indexName(name), table, opclass),
		}
		for _, s := range stmts {
			if _, err := tx.Exec(ctx, s); err != nil {
				return err
			}
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO `+collectionsTable+` (name, vector_size, distance)
			VALUES ($1, $2, $3)
			ON CONFLICT (name) DO UPDATE SET
				vector_size = EXCLUDED.vector_size,
				distance = EXCLUDED.distance
		`, name, int(vectorSize), string(distance))
		return err
	})
	if err != nil {
		return fmt.Errorf("[pgvector] failed to recreate collection '%s': %w", name, err)
	}

	a.mu.Lock()
	a.meta[name] = collectionMeta{vectorSize: int(vectorSize), distance: distance}
	a.mu.Unlock()
	return nil
}

// Upsert writes all inputs in one transaction using a pipelined batch.
func (a *Adapter) Upsert(ctx context.Context, collectionName string, inputs []vectordb.EmbeddingInput) error {
	if len(inputs) == 0 {
		return nil
	}
	if collectionName == "" {
		return fmt.Errorf("collection name cannot be empty")
	}

	query := `
		INSERT INTO ` + tableName(collectionName) + ` (doc_id, text, payload, embedding)
		VALUES ($1, $2, $3, $4::vector)
		ON CONFLICT (doc_id) DO UPDATE SET
			text = EXCLUDED.text,
			payload = EXCLUDED.payload,
			embedding = EXCLUDED.embedding`

	batch := &pgx.Batch{}
	for _, in := range inputs {
		text, extra := splitPayload(in.Payload)
		raw, err := json.Marshal(extra)
		if err != nil {
			return fmt.Errorf("[pgvector] point %q: marshal payload: %w", in.ID, err)
		}
		batch.Queue(query, in.ID, text, raw, formatVector(in.Vector))
	}

	err := pgx.BeginFunc(ctx, a.pool, func(tx pgx.Tx) error {
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return fmt.Errorf("[pgvector] upsert into '%s' failed: %w", collectionName, err)
	}
	return nil
}

// Search runs the requests concurrently, bounded by SearchConcurrency.
func (a *Adapter) Search(ctx context.Context, requests ...vectordb.SearchRequest) ([][]vectordb.SearchResult, error) {
	results := make([][]vectordb.SearchResult, len(requests))
	if len(requests) == 0 {
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, req := range requests {
		g.Go(func() error {
			res, err := a.searchOne(gctx, req)
			if err != nil {
				return fmt.Errorf("request [%d]: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (a *Adapter) searchOne(ctx context.Context, req vectordb.SearchRequest) ([]vectordb.SearchResult, error) {
	if req.CollectionName == "" {
		return nil, fmt.Errorf("collection name cannot be empty")
	}
	if len(req.Vector) == 0 {
		return nil, fmt.Errorf("vector cannot be empty")
	}
	if req.TopK <= 0 {
		return nil, fmt.Errorf("topK must be greater than 0")
	}

	meta, err := a.metaOf(ctx, req.CollectionName)
	if err != nil {
		return nil, err
	}
	op, _, err := operator(meta.distance)
	if err != nil {
		return nil, err
	}

	rows, err := a.pool.Query(ctx, `
		SELECT doc_id, text, payload, embedding `+op+` $1::vector AS distance
		FROM `+tableName(req.CollectionName)+`
		ORDER BY distance
		LIMIT $2
	`, formatVector(req.Vector), req.TopK)
	if err != nil {
		return nil, fmt.Errorf("[pgvector] search failed: %w", err)
	}
	defer rows.Close()

	results := make([]vectordb.SearchResult, 0, req.TopK)
	for rows.Next() {
		var (
			docID, text string
			raw         []byte
			distance    float64
		)
		if err := rows.Scan(&docID, &text, &raw, &distance); err != nil {
			return nil, fmt.Errorf("[pgvector] scan row: %w", err)
		}

		payload := map[string]any{}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &payload); err != nil {
				return nil, fmt.Errorf("[pgvector] decode payload of %q: %w", docID, err)
			}
		}
		payload[vectordb.PayloadDocID] = docID
		payload[vectordb.PayloadText] = text

		results = append(results, vectordb.SearchResult{
			ID:      docID,
			Score:   scoreFromDistance(meta.distance, distance),
			Payload: payload,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("[pgvector] search failed: %w", err)
	}
	return results, nil
}

// GetCollection reports the registry entry and an exact row count.
func (a *Adapter) GetCollection(ctx context.Context, name string) (*vectordb.Collection, error) {
	if name == "" {
		return nil, fmt.Errorf("collection name cannot be empty")
	}
	meta, err := a.metaOf(ctx, name)
	if err != nil {
		return nil, err
	}
	count, err := a.Count(ctx, name)
	if err != nil {
		return nil, err
	}
	return &vectordb.Collection{
		Name:       name,
		Status:     "green",
		VectorSize: meta.vectorSize,
		Distance:   string(meta.distance),
		PointCount: count,
	}, nil
}

// Count returns the number of rows in the collection table.
func (a *Adapter) Count(ctx context.Context, name string) (uint64, error) {
	var n int64
	if err := a.pool.QueryRow(ctx, `SELECT count(*) FROM `+tableName(name)).Scan(&n); err != nil {
		return 0, fmt.Errorf("[pgvector] failed to count rows in '%s': %w", name, err)
	}
	return uint64(n), nil
}

// Close is a no-op: the pool is closed by the fx lifecycle.
func (a *Adapter) Close() error {
	return nil
}

func (a *Adapter) metaOf(ctx context.Context, name string) (collectionMeta, error) {
	a.mu.RLock()
	m, ok := a.meta[name]
	a.mu.RUnlock()
	if ok {
		return m, nil
	}

	var (
		size     int
		distance string
	)
	err := a.pool.QueryRow(ctx,
		`SELECT vector_size, distance FROM `+collectionsTable+` WHERE name = $1`, name,
	).Scan(&size, &distance)
	if err != nil {
		return collectionMeta{}, fmt.Errorf("[pgvector] unknown collection '%s': %w", name, err)
	}

	m = collectionMeta{vectorSize: size, distance: vectordb.Distance(distance)}
	a.mu.Lock()
	a.meta[name] = m
	a.mu.Unlock()
	return m, nil
}

// splitPayload separates the text column from the remaining JSONB payload.
func splitPayload(p map[string]any) (string, map[string]any) {
	text, _ := p[vectordb.PayloadText].(string)
	extra := make(map[string]any, len(p))
	for k, v := range p {
		if k == vectordb.PayloadText || k == vectordb.PayloadDocID {
			continue
		}
		extra[k] = v
	}
	return text, extra
}
