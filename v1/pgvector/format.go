package pgvector

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/Aleph-Alpha/colbert-search/v1/vectordb"
)

// formatVector renders v in pgvector's text input format: "[0.1,0.2,0.3]".
func formatVector(v []float32) string {
	var b strings.Builder
	b.Grow(len(v) * 10)
	b.WriteByte('[')
	for i, x := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(x), 'g', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}

// tableName maps a collection name to a quoted table identifier.
func tableName(collection string) string {
	return pgx.Identifier{"colbert_" + collection}.Sanitize()
}

// indexName is the quoted name of a collection's HNSW index.
func indexName(collection string) string {
	return pgx.Identifier{"colbert_" + collection + "_embedding_idx"}.Sanitize()
}

// operator returns the pgvector distance operator and HNSW operator class.
func operator(d vectordb.Distance) (op, opclass string, err error) {
	switch d {
	case vectordb.Cosine:
		return "<=>", "vector_cosine_ops", nil
	case vectordb.Dot:
		return "<#>", "vector_ip_ops", nil
	case vectordb.Euclid:
		return "<->", "vector_l2_ops", nil
	default:
		return "", "", fmt.Errorf("unsupported distance %q", d)
	}
}

// scoreFromDistance turns the operator result into a higher-is-closer score.
// <=> yields cosine distance, <#> the negated inner product and <-> the L2
// distance.
func scoreFromDistance(d vectordb.Distance, raw float64) float32 {
	switch d {
	case vectordb.Cosine:
		return float32(1 - raw)
	default:
		return float32(-raw)
	}
}
