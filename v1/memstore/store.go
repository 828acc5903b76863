package memstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/Aleph-Alpha/colbert-search/v1/vectordb"
)

// Store is an in-process vectordb.Service. Search is an exact linear scan,
// which is fine for development data sets and tests.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

type collection struct {
	vectorSize int
	distance   vectordb.Distance
	order      []string
	points     map[string]vectordb.EmbeddingInput
}

var _ vectordb.Service = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{collections: make(map[string]*collection)}
}

func (s *Store) RecreateCollection(_ context.Context, name string, vectorSize uint64, distance vectordb.Distance) error {
	if name == "" {
		return fmt.Errorf("collection name cannot be empty")
	}
	if vectorSize == 0 {
		return fmt.Errorf("vector size must be greater than 0")
	}
	switch distance {
	case vectordb.Cosine, vectordb.Dot, vectordb.Euclid:
	default:
		return fmt.Errorf("unsupported distance %q", distance)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[name] = &collection{
		vectorSize: int(vectorSize),
		distance:   distance,
		points:     make(map[string]vectordb.EmbeddingInput),
	}
	return nil
}

// Upsert validates every vector's dimension before writing any of them.
func (s *Store) Upsert(_ context.Context, collectionName string, inputs []vectordb.EmbeddingInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[collectionName]
	if !ok {
		return fmt.Errorf("collection '%s' not found", collectionName)
	}
	for _, in := range inputs {
		if len(in.Vector) != c.vectorSize {
			return fmt.Errorf("point %q: vector has %d dimensions, collection expects %d", in.ID, len(in.Vector), c.vectorSize)
		}
	}

	for _, in := range inputs {
		if _, exists := c.points[in.ID]; !exists {
			c.order = append(c.order, in.ID)
		}
		payload := make(map[string]any, len(in.Payload)+1)
		for k, v := range in.Payload {
			payload[k] = v
		}
		payload[vectordb.PayloadDocID] = in.ID
		c.points[in.ID] = vectordb.EmbeddingInput{
			ID:      in.ID,
			Vector:  append([]float32(nil), in.Vector...),
			Payload: payload,
		}
	}
	return nil
}

// Search scores every point; ties keep insertion order.
func (s *Store) Search(_ context.Context, requests ...vectordb.SearchRequest) ([][]vectordb.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([][]vectordb.SearchResult, len(requests))
	for i, req := range requests {
		c, ok := s.collections[req.CollectionName]
		if !ok {
			return nil, fmt.Errorf("request [%d]: collection '%s' not found", i, req.CollectionName)
		}
		if len(req.Vector) != c.vectorSize {
			return nil, fmt.Errorf("request [%d]: vector has %d dimensions, collection expects %d", i, len(req.Vector), c.vectorSize)
		}
		if req.TopK <= 0 {
			return nil, fmt.Errorf("request [%d]: topK must be greater than 0", i)
		}

		hits := make([]vectordb.SearchResult, 0, len(c.order))
		for _, id := range c.order {
			p := c.points[id]
			hits = append(hits, vectordb.SearchResult{
				ID:      id,
				Score:   score(c.distance, req.Vector, p.Vector),
				Payload: p.Payload,
			})
		}
		sort.SliceStable(hits, func(a, b int) bool { return hits[a].Score > hits[b].Score })
		if len(hits) > req.TopK {
			hits = hits[:req.TopK]
		}
		out[i] = hits
	}
	return out, nil
}

func (s *Store) GetCollection(_ context.Context, name string) (*vectordb.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[name]
	if !ok {
		return nil, fmt.Errorf("collection '%s' not found", name)
	}
	return &vectordb.Collection{
		Name:       name,
		Status:     "green",
		VectorSize: c.vectorSize,
		Distance:   string(c.distance),
		PointCount: uint64(len(c.points)),
	}, nil
}

func (s *Store) Count(_ context.Context, name string) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[name]
	if !ok {
		return 0, fmt.Errorf("collection '%s' not found", name)
	}
	return uint64(len(c.points)), nil
}

func (s *Store) Close() error { return nil }

// score returns a higher-is-closer similarity for the metric.
func score(d vectordb.Distance, a, b []float32) float32 {
	var dot, na, nb, l2 float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
		l2 += (x - y) * (x - y)
	}

	switch d {
	case vectordb.Dot:
		return float32(dot)
	case vectordb.Euclid:
		return float32(-math.Sqrt(l2))
	default:
		if na == 0 || nb == 0 {
			return 0
		}
		return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
	}
}
