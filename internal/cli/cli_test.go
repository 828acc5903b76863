package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleph-Alpha/colbert-search/v1/client"
	"github.com/Aleph-Alpha/colbert-search/v1/server"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return root
}

func TestExpandPatterns(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.md":             "alpha",
		"docs/b.md":        "beta",
		"docs/deep/c.md":   "gamma",
		"docs/notes.txt":   "delta",
		"vendor/skip.md":   "vendored",
		"docs/deep/d.json": "{}",
	})

	t.Chdir(root)

	files, err := expandPatterns([]string{"**/*.md", "docs/*.md"}, []string{"**/vendor/**"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.md", "docs/b.md", "docs/deep/c.md"}, files)
}

func TestExpandPatternsBadPattern(t *testing.T) {
	_, err := expandPatterns([]string{"[unclosed"}, nil)
	assert.Error(t, err)
}

func TestLoadDocumentsSkipsBlankFiles(t *testing.T) {
	root := writeTree(t, map[string]string{
		"keep.txt":  "the cat sat",
		"blank.txt": "  \n\t ",
	})
	keep := filepath.Join(root, "keep.txt")
	blank := filepath.Join(root, "blank.txt")

	docs, skipped, err := loadDocuments([]string{keep, blank})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, filepath.ToSlash(keep), docs[0].DocID)
	assert.Equal(t, "the cat sat", docs[0].Text)
	assert.Equal(t, []string{blank}, skipped)
}

func TestChunk(t *testing.T) {
	assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, chunk([]int{1, 2, 3, 4, 5}, 2))
	assert.Equal(t, [][]int{{1, 2, 3}}, chunk([]int{1, 2, 3}, 0))
	assert.Nil(t, chunk([]int{}, 3))
}

func TestBaseURL(t *testing.T) {
	cases := map[string]string{
		":8000":             "http://localhost:8000",
		"0.0.0.0:8000":      "http://localhost:8000",
		"[::]:8000":         "http://localhost:8000",
		"api.internal:9000": "http://api.internal:9000",
		"https://search.io": "https://search.io",
		"127.0.0.1:8000":    "http://127.0.0.1:8000",
	}
	for addr, want := range cases {
		assert.Equal(t, want, baseURL(addr), addr)
	}
}

func TestIngestBatchesAndCollectsFailures(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var in server.BatchIndexRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.LessOrEqual(t, len(in.Docs), 2)

		resp := server.BatchIndexResponse{Success: true}
		for _, d := range in.Docs {
			item := server.BatchIndexItem{DocID: d.DocID, Status: server.ItemIndexed}
			if d.DocID == "bad" {
				item.Status = server.ItemFailed
				item.Error = "rejected"
				resp.Failed++
				resp.Success = false
			} else {
				resp.Count++
			}
			resp.Results = append(resp.Results, item)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer ts.Close()

	docs := []server.IndexRequest{
		{DocID: "a", Text: "1"},
		{DocID: "bad", Text: "2"},
		{DocID: "c", Text: "3"},
	}
	var out bytes.Buffer
	c := client.New(ts.URL, "k", client.WithHTTPClient(ts.Client()))

	summary, err := ingest(context.Background(), c, docs, 2, &out)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 2, summary.Indexed)
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, "bad", summary.Failures[0].DocID)
}

func TestIngestStopsOnRequestError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(server.ErrorResponse{Detail: "Invalid or missing API key"})
	}))
	defer ts.Close()

	c := client.New(ts.URL, "wrong", client.WithHTTPClient(ts.Client()))
	_, err := ingest(context.Background(), c, []server.IndexRequest{{DocID: "a", Text: "x"}}, 10, &bytes.Buffer{})
	require.Error(t, err)
	assert.True(t, client.IsStatus(err, http.StatusForbidden))
}

func TestWriteResults(t *testing.T) {
	results := []server.QueryResult{
		{Query: "cats", Results: []server.SearchHit{{DocID: "d1", Score: 0.9, Text: "the cat\nsat"}}},
		{Query: "none", Results: []server.SearchHit{}},
		{Query: "???", Results: []server.SearchHit{}, Error: "zero tokens"},
	}

	var text bytes.Buffer
	require.NoError(t, writeResults(&text, results, false))
	assert.Contains(t, text.String(), `Query: "cats"`)
	assert.Contains(t, text.String(), "1. [0.9000] d1")
	assert.Contains(t, text.String(), "the cat sat")
	assert.Contains(t, text.String(), "no results")
	assert.Contains(t, text.String(), "error: zero tokens")

	var raw bytes.Buffer
	require.NoError(t, writeResults(&raw, results, true))
	var decoded []server.QueryResult
	require.NoError(t, json.Unmarshal(raw.Bytes(), &decoded))
	assert.Equal(t, results, decoded)
}
