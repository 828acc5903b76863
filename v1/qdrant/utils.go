package qdrant

import (
	"fmt"

	qdrant "github.com/qdrant/go-client/qdrant"
)

// validateSearchInput validates common search parameters
func validateSearchInput(collectionName string, vector []float32, topK int) error {
	if collectionName == "" {
		return fmt.Errorf("collection name cannot be empty")
	}
	if len(vector) == 0 {
		return fmt.Errorf("vector cannot be empty")
	}
	if topK <= 0 {
		return fmt.Errorf("topK must be greater than 0")
	}
	return nil
}

// extractVectorDetails returns the vector size and distance metric of a
// collection created with a single unnamed vector, or (0, Distance_UnknownDistance)
// when the nested protobuf config is missing or of another shape.
func extractVectorDetails(info *qdrant.CollectionInfo) (int, qdrant.Distance) {
	params := info.GetConfig().GetParams().GetVectorsConfig().GetParams()
	if params == nil {
		return 0, qdrant.Distance_UnknownDistance
	}
	return int(params.GetSize()), params.GetDistance()
}
