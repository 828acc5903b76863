package qdrant

import (
	"context"
	"fmt"
	"sync"

	qdrant "github.com/qdrant/go-client/qdrant"

	"github.com/Aleph-Alpha/colbert-search/v1/vectordb"
)

// Adapter implements vectordb.Service on top of the Qdrant SDK.
type Adapter struct {
	client    *qdrant.Client
	batchSize int

	mu        sync.RWMutex
	distances map[string]vectordb.Distance
}

var _ vectordb.Service = (*Adapter)(nil)

// NewAdapter creates an adapter around an already connected SDK client.
func NewAdapter(client *qdrant.Client) *Adapter {
	return &Adapter{
		client:    client,
		batchSize: defaultBatchSize,
		distances: make(map[string]vectordb.Distance),
	}
}

// NewAdapterFromClient is the fx constructor: it reuses the client's
// connection and its configured upsert batch size.
func NewAdapterFromClient(c *QdrantClient) *Adapter {
	a := NewAdapter(c.Client())
	if c.cfg.UpsertBatchSize > 0 {
		a.batchSize = c.cfg.UpsertBatchSize
	}
	return a
}

// RecreateCollection drops name if present and creates it empty with a
// single unnamed vector of vectorSize dimensions.
func (a *Adapter) RecreateCollection(ctx context.Context, name string, vectorSize uint64, distance vectordb.Distance) error {
	if name == "" {
		return fmt.Errorf("collection name cannot be empty")
	}
	if vectorSize == 0 {
		return fmt.Errorf("vector size must be greater than 0")
	}
	qd, err := toQdrantDistance(distance)
	if err != nil {
		return err
	}

	exists, err := a.client.CollectionExists(ctx, name)
	if err != nil {
		return fmt.Errorf("[Qdrant] failed to check collection '%s': %w", name, err)
	}
	if exists {
		if err := a.client.DeleteCollection(ctx, name); err != nil {
			return fmt.Errorf("[Qdrant] failed to delete collection '%s': %w", name, err)
		}
	}

	err = a.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     vectorSize,
			Distance: qd,
		}),
	})
	if err != nil {
		return fmt.Errorf("[Qdrant] failed to create collection '%s': %w", name, err)
	}

	a.mu.Lock()
	a.distances[name] = distance
	a.mu.Unlock()
	return nil
}

// Upsert writes inputs in chunks of batchSize and waits for each chunk to
// be persisted before sending the next.
func (a *Adapter) Upsert(ctx context.Context, collectionName string, inputs []vectordb.EmbeddingInput) error {
	if len(inputs) == 0 {
		return nil
	}
	if collectionName == "" {
		return fmt.Errorf("collection name cannot be empty")
	}

	points := make([]*qdrant.PointStruct, 0, len(inputs))
	for _, in := range inputs {
		p, err := toPoint(in)
		if err != nil {
			return fmt.Errorf("[Qdrant] %w", err)
		}
		points = append(points, p)
	}

	wait := true
	for start := 0; start < len(points); start += a.batchSize {
		end := min(start+a.batchSize, len(points))

		_, err := a.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: collectionName,
			Points:         points[start:end],
			Wait:           &wait,
		})
		if err != nil {
			return fmt.Errorf("[Qdrant] batch upsert failed at [%d:%d]: %w", start, end, err)
		}
	}
	return nil
}

// Search sends all requests that target the same collection as one
// QueryBatch call and returns results in request order.
func (a *Adapter) Search(ctx context.Context, requests ...vectordb.SearchRequest) ([][]vectordb.SearchResult, error) {
	if len(requests) == 0 {
		return [][]vectordb.SearchResult{}, nil
	}

	// Group request indices by collection; almost always a single group.
	groups := make(map[string][]int)
	var order []string
	for i, r := range requests {
		if err := validateSearchInput(r.CollectionName, r.Vector, r.TopK); err != nil {
			return nil, fmt.Errorf("request [%d]: %w", i, err)
		}
		if _, ok := groups[r.CollectionName]; !ok {
			order = append(order, r.CollectionName)
		}
		groups[r.CollectionName] = append(groups[r.CollectionName], i)
	}

	results := make([][]vectordb.SearchResult, len(requests))
	for _, name := range order {
		idx := groups[name]

		distance, err := a.distanceOf(ctx, name)
		if err != nil {
			return nil, err
		}

		queries := make([]*qdrant.QueryPoints, len(idx))
		for j, i := range idx {
			limit := uint64(requests[i].TopK)
			queries[j] = &qdrant.QueryPoints{
				CollectionName: name,
				Query:          qdrant.NewQuery(requests[i].Vector...),
				Limit:          &limit,
				WithPayload:    qdrant.NewWithPayload(true),
			}
		}

		batch, err := a.client.QueryBatch(ctx, &qdrant.QueryBatchPoints{
			CollectionName: name,
			QueryPoints:    queries,
		})
		if err != nil {
			return nil, fmt.Errorf("[Qdrant] batch search on '%s' failed: %w", name, err)
		}
		if len(batch) != len(idx) {
			return nil, fmt.Errorf("[Qdrant] batch search on '%s' returned %d results for %d queries", name, len(batch), len(idx))
		}

		for j, i := range idx {
			res, err := fromScoredPoints(batch[j].GetResult(), distance)
			if err != nil {
				return nil, fmt.Errorf("request [%d] parse failed: %w", i, err)
			}
			results[i] = res
		}
	}
	return results, nil
}

// GetCollection retrieves metadata about a collection, including an exact
// point count.
func (a *Adapter) GetCollection(ctx context.Context, name string) (*vectordb.Collection, error) {
	if name == "" {
		return nil, fmt.Errorf("collection name cannot be empty")
	}

	info, err := a.client.GetCollectionInfo(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("[Qdrant] failed to get collection '%s': %w", name, err)
	}

	size, distance := extractVectorDetails(info)
	count, err := a.Count(ctx, name)
	if err != nil {
		return nil, err
	}

	return &vectordb.Collection{
		Name:       name,
		Status:     info.GetStatus().String(),
		VectorSize: size,
		Distance:   string(fromQdrantDistance(distance)),
		PointCount: count,
	}, nil
}

// Count returns the exact number of points in the collection.
func (a *Adapter) Count(ctx context.Context, name string) (uint64, error) {
	exact := true
	n, err := a.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: name,
		Exact:          &exact,
	})
	if err != nil {
		return 0, fmt.Errorf("[Qdrant] failed to count points in '%s': %w", name, err)
	}
	return n, nil
}

// Close is a no-op: the connection belongs to QdrantClient.
func (a *Adapter) Close() error {
	return nil
}

func (a *Adapter) distanceOf(ctx context.Context, name string) (vectordb.Distance, error) {
	a.mu.RLock()
	d, ok := a.distances[name]
	a.mu.RUnlock()
	if ok {
		return d, nil
	}

	info, err := a.client.GetCollectionInfo(ctx, name)
	if err != nil {
		return "", fmt.Errorf("[Qdrant] failed to get collection '%s': %w", name, err)
	}
	_, qd := extractVectorDetails(info)
	d = fromQdrantDistance(qd)

	a.mu.Lock()
	a.distances[name] = d
	a.mu.Unlock()
	return d, nil
}
