package pgvector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleph-Alpha/colbert-search/v1/vectordb"
)

func TestFormatVector(t *testing.T) {
	assert.Equal(t, "[]", formatVector(nil))
	assert.Equal(t, "[0.5,-1,3.25]", formatVector([]float32{0.5, -1, 3.25}))
	assert.Equal(t, "[0.1]", formatVector([]float32{0.1}))
}

func TestTableNameIsQuoted(t *testing.T) {
	assert.Equal(t, `"colbert_docs"`, tableName("docs"))
	assert.Equal(t, `"colbert_a""b"`, tableName(`a"b`))
	assert.Equal(t, `"colbert_docs_embedding_idx"`, indexName("docs"))
}

func TestOperator(t *testing.T) {
	cases := map[vectordb.Distance][2]string{
		vectordb.Cosine: {"<=>", "vector_cosine_ops"},
		vectordb.Dot:    {"<#>", "vector_ip_ops"},
		vectordb.Euclid: {"<->", "vector_l2_ops"},
	}
	for d, want := range cases {
		op, opclass, err := operator(d)
		require.NoError(t, err)
		assert.Equal(t, want[0], op)
		assert.Equal(t, want[1], opclass)
	}

	_, _, err := operator("hamming")
	assert.Error(t, err)
}

func TestScoreFromDistance(t *testing.T) {
	assert.InDelta(t, 0.75, scoreFromDistance(vectordb.Cosine, 0.25), 1e-6)
	assert.InDelta(t, 2.0, scoreFromDistance(vectordb.Dot, -2.0), 1e-6)
	assert.InDelta(t, -1.5, scoreFromDistance(vectordb.Euclid, 1.5), 1e-6)
}

func TestSplitPayload(t *testing.T) {
	text, extra := splitPayload(map[string]any{
		vectordb.PayloadText:  "hello",
		vectordb.PayloadDocID: "d1",
		"lang":                "en",
	})
	assert.Equal(t, "hello", text)
	assert.Equal(t, map[string]any{"lang": "en"}, extra)

	text, extra = splitPayload(nil)
	assert.Empty(t, text)
	assert.Empty(t, extra)
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())

	cfg.DSN = ""
	assert.Error(t, cfg.Validate())
}
