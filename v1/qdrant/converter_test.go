package qdrant

import (
	"testing"

	"github.com/google/uuid"
	qdrant "github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleph-Alpha/colbert-search/v1/vectordb"
)

func TestPointID(t *testing.T) {
	t.Run("uuid is kept", func(t *testing.T) {
		id := "5b9a0f7e-6f3c-4b8e-9d7c-2a1f0e4b6c3d"
		assert.Equal(t, id, PointID(id))
	})

	t.Run("other uuid spellings stay distinct", func(t *testing.T) {
		canonical := "5b9a0f7e-6f3c-4b8e-9d7c-2a1f0e4b6c3d"
		spellings := []string{
			canonical,
			"5B9A0F7E-6F3C-4B8E-9D7C-2A1F0E4B6C3D",
			"urn:uuid:5b9a0f7e-6f3c-4b8e-9d7c-2a1f0e4b6c3d",
			"{5b9a0f7e-6f3c-4b8e-9d7c-2a1f0e4b6c3d}",
			"5b9a0f7e6f3c4b8e9d7c2a1f0e4b6c3d",
		}

		seen := make(map[string]string, len(spellings))
		for _, s := range spellings {
			id := PointID(s)
			if prev, ok := seen[id]; ok {
				t.Fatalf("%q and %q map to the same point %s", prev, s, id)
			}
			seen[id] = s
		}
		assert.Equal(t, canonical, PointID(canonical))
	})

	t.Run("arbitrary string is stable", func(t *testing.T) {
		a := PointID("cat")
		assert.Equal(t, a, PointID("cat"))
		assert.NotEqual(t, a, PointID("mat"))

		parsed, err := uuid.Parse(a)
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(5), parsed.Version())
	})
}

func TestToPointKeepsDocID(t *testing.T) {
	p, err := toPoint(vectordb.EmbeddingInput{
		ID:      "doc-1",
		Vector:  []float32{0.1, 0.2},
		Payload: map[string]any{vectordb.PayloadText: "hello"},
	})
	require.NoError(t, err)

	assert.Equal(t, PointID("doc-1"), p.GetId().GetUuid())
	assert.Equal(t, "doc-1", p.GetPayload()[vectordb.PayloadDocID].GetStringValue())
	assert.Equal(t, "hello", p.GetPayload()[vectordb.PayloadText].GetStringValue())
}

func TestToPointRejectsUnsupportedPayload(t *testing.T) {
	_, err := toPoint(vectordb.EmbeddingInput{
		ID:      "doc-1",
		Vector:  []float32{1},
		Payload: map[string]any{"bad": make(chan int)},
	})
	assert.Error(t, err)
}

func TestFromScoredPoints(t *testing.T) {
	points := []*qdrant.ScoredPoint{
		{
			Id:    qdrant.NewID(PointID("cat")),
			Score: 0.9,
			Payload: qdrant.NewValueMap(map[string]any{
				vectordb.PayloadDocID: "cat",
				vectordb.PayloadText:  "The cat sat on the mat.",
				"tags":                []any{"a", "b"},
				"n":                   int64(3),
			}),
		},
		{
			Id:    qdrant.NewIDNum(42),
			Score: 0.5,
		},
	}

	results, err := fromScoredPoints(points, vectordb.Cosine)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "cat", results[0].ID)
	assert.Equal(t, float32(0.9), results[0].Score)
	assert.Equal(t, "The cat sat on the mat.", results[0].Text())
	assert.Equal(t, []any{"a", "b"}, results[0].Payload["tags"])
	assert.Equal(t, int64(3), results[0].Payload["n"])

	assert.Equal(t, "42", results[1].ID)
	assert.Equal(t, "", results[1].Text())
}

func TestFromScoredPointsNegatesEuclid(t *testing.T) {
	results, err := fromScoredPoints([]*qdrant.ScoredPoint{
		{Id: qdrant.NewIDNum(1), Score: 0.25},
	}, vectordb.Euclid)
	require.NoError(t, err)
	assert.Equal(t, float32(-0.25), results[0].Score)
}

func TestDistanceConversion(t *testing.T) {
	for _, d := range []vectordb.Distance{vectordb.Cosine, vectordb.Dot, vectordb.Euclid} {
		qd, err := toQdrantDistance(d)
		require.NoError(t, err)
		assert.Equal(t, d, fromQdrantDistance(qd))
	}

	_, err := toQdrantDistance("manhattan")
	assert.Error(t, err)
}

func TestExtractVectorDetails(t *testing.T) {
	size, d := extractVectorDetails(nil)
	assert.Equal(t, 0, size)
	assert.Equal(t, qdrant.Distance_UnknownDistance, d)

	info := &qdrant.CollectionInfo{
		Config: &qdrant.CollectionConfig{
			Params: &qdrant.CollectionParams{
				VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
					Size:     128,
					Distance: qdrant.Distance_Dot,
				}),
			},
		},
	}
	size, d = extractVectorDetails(info)
	assert.Equal(t, 128, size)
	assert.Equal(t, qdrant.Distance_Dot, d)
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())

	cfg.Host = ""
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Port = 70000
	assert.Error(t, cfg.Validate())
}
