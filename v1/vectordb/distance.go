package vectordb

import (
	"fmt"
	"strings"
)

// Distance is the similarity metric a collection is created with.
type Distance string

const (
	Cosine Distance = "cosine"
	Dot    Distance = "dot"
	Euclid Distance = "euclid"
)

// ParseDistance accepts the metric names used in configuration, case-insensitively.
func ParseDistance(s string) (Distance, error) {
	switch Distance(strings.ToLower(strings.TrimSpace(s))) {
	case Cosine, "":
		return Cosine, nil
	case Dot:
		return Dot, nil
	case Euclid, "euclidean", "l2":
		return Euclid, nil
	default:
		return "", fmt.Errorf("vectordb: unsupported distance %q (want cosine, dot or euclid)", s)
	}
}
