package app

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/Aleph-Alpha/colbert-search/v1/client"
	"github.com/Aleph-Alpha/colbert-search/v1/config"
	"github.com/Aleph-Alpha/colbert-search/v1/embedding"
	"github.com/Aleph-Alpha/colbert-search/v1/server"
	"github.com/Aleph-Alpha/colbert-search/v1/vectordb"
)

func memoryConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.StoreBackend = config.BackendMemory
	cfg.Logger.Level = "error"
	cfg.Embedding.Provider = embedding.ProviderHashing
	cfg.Embedding.Dimension = cfg.Pipeline.VectorSize
	cfg.Metrics.Address = "127.0.0.1:0"
	cfg.Server.Address = "127.0.0.1:0"
	cfg.Server.APIKey = "test-key"
	return cfg
}

func TestModuleServesIndexAndSearch(t *testing.T) {
	var srv *server.Server
	var store vectordb.Service

	app := fxtest.New(t, Module(memoryConfig()), fx.Populate(&srv, &store))
	app.RequireStart()
	defer app.RequireStop()

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()
	c := client.New(ts.URL, "test-key", client.WithHTTPClient(ts.Client()))
	ctx := context.Background()

	_, err := c.Index(ctx, "cats", "the cat sat on the mat")
	require.NoError(t, err)
	batch, err := c.BatchIndex(ctx, []server.IndexRequest{
		{DocID: "markets", Text: "quarterly stock market report"},
	})
	require.NoError(t, err)
	assert.True(t, batch.Success)

	results, err := c.Search(ctx, []string{"cat on a mat"}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Len(t, results[0].Results, 1)
	assert.Equal(t, "cats", results[0].Results[0].DocID)

	health, err := c.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, uint64(2), health.Details.CollectionPointsCount)

	n, err := store.Count(ctx, "colbert_docs")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n)
}

func TestModuleRejectsWrongKey(t *testing.T) {
	var srv *server.Server
	app := fxtest.New(t, Module(memoryConfig()), fx.Populate(&srv))
	app.RequireStart()
	defer app.RequireStop()

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	c := client.New(ts.URL, "wrong", client.WithHTTPClient(ts.Client()))
	_, err := c.Index(context.Background(), "a", "text")
	assert.True(t, client.IsStatus(err, 403))
}

func TestStoreModuleUnknownBackend(t *testing.T) {
	app := fx.New(StoreModule("cassandra"), fx.NopLogger)
	require.Error(t, app.Err())
	assert.Contains(t, app.Err().Error(), "cassandra")
}
