package pgvector

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/Aleph-Alpha/colbert-search/v1/logger"
	"github.com/Aleph-Alpha/colbert-search/v1/vectordb"
)

func setupPgvectorContainer(ctx context.Context) (testcontainers.Container, string, error) {
	req := testcontainers.ContainerRequest{
		Image: "pgvector/pgvector:pg16",
		Env: map[string]string{
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
			"POSTGRES_DB":       "testdb",
		},
		ExposedPorts: []string{"5432/tcp"},
		// The entrypoint restarts postgres once after init.
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to start pgvector container: %w", err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		_ = c.Terminate(ctx)
		return nil, "", err
	}
	port, err := c.MappedPort(ctx, "5432")
	if err != nil {
		_ = c.Terminate(ctx)
		return nil, "", err
	}

	dsn := fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port())
	return c, dsn, nil
}

func TestPgvectorAdapterWithFXModule(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	c, dsn, err := setupPgvectorContainer(ctx)
	require.NoError(t, err)
	defer func() { _ = c.Terminate(ctx) }()

	var (
		adapter *Adapter
		pool    *pgxpool.Pool
	)
	cfg := DefaultConfig()
	cfg.DSN = dsn
	app := fxtest.New(t,
		fx.Supply(cfg),
		fx.Provide(func() logger.Logger { return logger.NewNopLogger() }),
		FXModule,
		fx.Populate(&adapter, &pool),
	)
	app.RequireStart()
	defer app.RequireStop()

	const collection = "docs_test"

	for _, d := range []vectordb.Distance{vectordb.Cosine, vectordb.Dot, vectordb.Euclid} {
		t.Run(string(d), func(t *testing.T) {
			require.NoError(t, adapter.RecreateCollection(ctx, collection, 3, d))

			n, err := adapter.Count(ctx, collection)
			require.NoError(t, err)
			assert.Equal(t, uint64(0), n)

			require.NoError(t, adapter.Upsert(ctx, collection, []vectordb.EmbeddingInput{
				{ID: "cat", Vector: []float32{1, 0, 0}, Payload: map[string]any{vectordb.PayloadText: "The cat sat on the mat.", "lang": "en"}},
				{ID: "dog", Vector: []float32{0, 1, 0}, Payload: map[string]any{vectordb.PayloadText: "A dog barked."}},
			}))

			results, err := adapter.Search(ctx,
				vectordb.SearchRequest{CollectionName: collection, Vector: []float32{0.9, 0.1, 0}, TopK: 2},
				vectordb.SearchRequest{CollectionName: collection, Vector: []float32{0, 1, 0}, TopK: 1},
			)
			require.NoError(t, err)
			require.Len(t, results, 2)
			require.Len(t, results[0], 2)
			assert.Equal(t, "cat", results[0][0].ID)
			assert.Equal(t, "The cat sat on the mat.", results[0][0].Text())
			assert.Equal(t, "en", results[0][0].Payload["lang"])
			assert.Greater(t, results[0][0].Score, results[0][1].Score)
			assert.Equal(t, "dog", results[1][0].ID)

			info, err := adapter.GetCollection(ctx, collection)
			require.NoError(t, err)
			assert.Equal(t, 3, info.VectorSize)
			assert.Equal(t, string(d), info.Distance)
			assert.Equal(t, uint64(2), info.PointCount)
		})
	}

	t.Run("UpsertOverwrites", func(t *testing.T) {
		require.NoError(t, adapter.Upsert(ctx, collection, []vectordb.EmbeddingInput{
			{ID: "cat", Vector: []float32{1, 0, 0}, Payload: map[string]any{vectordb.PayloadText: "replaced"}},
		}))
		n, err := adapter.Count(ctx, collection)
		require.NoError(t, err)
		assert.Equal(t, uint64(2), n)
	})

	t.Run("MetadataSurvivesNewAdapter", func(t *testing.T) {
		fresh := NewAdapter(pool, cfg)
		info, err := fresh.GetCollection(ctx, collection)
		require.NoError(t, err)
		assert.Equal(t, string(vectordb.Euclid), info.Distance)
	})
}
