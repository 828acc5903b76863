package qdrant

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	qdrant "github.com/qdrant/go-client/qdrant"

	"github.com/Aleph-Alpha/colbert-search/v1/vectordb"
)

// pointNamespace seeds the name-based UUIDs derived from document ids.
var pointNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/Aleph-Alpha/colbert-search/points"))

// PointID maps a document id to a Qdrant point id. Qdrant only accepts
// unsigned integers and UUIDs; a doc_id already in canonical form
// (lower-case, dashed) is kept, every other string becomes a stable UUIDv5
// so re-indexing the same doc_id overwrites the same point. Other spellings
// of a UUID are distinct doc_ids and must not share a point.
func PointID(docID string) string {
	if id, err := uuid.Parse(docID); err == nil && id.String() == docID {
		return docID
	}
	return uuid.NewSHA1(pointNamespace, []byte(docID)).String()
}

func toQdrantDistance(d vectordb.Distance) (qdrant.Distance, error) {
	switch d {
	case vectordb.Cosine:
		return qdrant.Distance_Cosine, nil
	case vectordb.Dot:
		return qdrant.Distance_Dot, nil
	case vectordb.Euclid:
		return qdrant.Distance_Euclid, nil
	default:
		return qdrant.Distance_UnknownDistance, fmt.Errorf("unsupported distance %q", d)
	}
}

func fromQdrantDistance(d qdrant.Distance) vectordb.Distance {
	switch d {
	case qdrant.Distance_Dot:
		return vectordb.Dot
	case qdrant.Distance_Euclid:
		return vectordb.Euclid
	default:
		return vectordb.Cosine
	}
}

// toPoint converts an EmbeddingInput into a PointStruct. The doc_id is
// always kept in the doc_id payload field so results can be mapped back.
func toPoint(in vectordb.EmbeddingInput) (*qdrant.PointStruct, error) {
	payload := make(map[string]any, len(in.Payload)+1)
	for k, v := range in.Payload {
		payload[k] = v
	}
	payload[vectordb.PayloadDocID] = in.ID

	values, err := qdrant.TryValueMap(payload)
	if err != nil {
		return nil, fmt.Errorf("point %q: %w", in.ID, err)
	}

	return &qdrant.PointStruct{
		Id:      qdrant.NewID(PointID(in.ID)),
		Vectors: qdrant.NewVectors(in.Vector...),
		Payload: values,
	}, nil
}

// fromScoredPoints converts Qdrant hits into SearchResults. For Euclid
// collections the distance is negated so higher always means closer.
func fromScoredPoints(points []*qdrant.ScoredPoint, distance vectordb.Distance) ([]vectordb.SearchResult, error) {
	results := make([]vectordb.SearchResult, 0, len(points))
	for _, p := range points {
		payload := fromValueMap(p.GetPayload())

		id, _ := payload[vectordb.PayloadDocID].(string)
		if id == "" {
			var err error
			if id, err = pointIDString(p.GetId()); err != nil {
				return nil, err
			}
		}

		score := p.GetScore()
		if distance == vectordb.Euclid {
			score = -score
		}

		results = append(results, vectordb.SearchResult{
			ID:      id,
			Score:   score,
			Payload: payload,
		})
	}
	return results, nil
}

func pointIDString(id *qdrant.PointId) (string, error) {
	switch v := id.GetPointIdOptions().(type) {
	case *qdrant.PointId_Num:
		return strconv.FormatUint(v.Num, 10), nil
	case *qdrant.PointId_Uuid:
		return v.Uuid, nil
	default:
		return "", fmt.Errorf("[Qdrant] unexpected PointId type: %T", v)
	}
}

func fromValueMap(m map[string]*qdrant.Value) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = fromValue(v)
	}
	return out
}

func fromValue(v *qdrant.Value) any {
	switch kind := v.GetKind().(type) {
	case *qdrant.Value_StringValue:
		return kind.StringValue
	case *qdrant.Value_IntegerValue:
		return kind.IntegerValue
	case *qdrant.Value_DoubleValue:
		return kind.DoubleValue
	case *qdrant.Value_BoolValue:
		return kind.BoolValue
	case *qdrant.Value_StructValue:
		return fromValueMap(kind.StructValue.GetFields())
	case *qdrant.Value_ListValue:
		items := kind.ListValue.GetValues()
		list := make([]any, len(items))
		for i, item := range items {
			list[i] = fromValue(item)
		}
		return list
	default:
		return nil
	}
}
