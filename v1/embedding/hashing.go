package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// HashingProvider is a deterministic stand-in for the model: every token is
// mapped to a pseudo-random unit vector derived from its hash, so texts that
// share tokens end up close after mean pooling. It needs no network and is
// used for local development and tests.
type HashingProvider struct {
	dimension int
}

// NewHashingProvider returns a provider emitting token vectors of the given width.
func NewHashingProvider(dimension int) *HashingProvider {
	return &HashingProvider{dimension: dimension}
}

// Embed tokenises each text on letter/digit boundaries. A text without any
// token yields an empty Tensor.
func (h *HashingProvider) Embed(_ context.Context, texts []string, _ Kind) ([]Tensor, error) {
	out := make([]Tensor, len(texts))
	for i, text := range texts {
		tokens := tokenize(text)
		tensor := make(Tensor, 0, len(tokens))
		for _, tok := range tokens {
			tensor = append(tensor, h.tokenVector(tok))
		}
		out[i] = tensor
	}
	return out, nil
}

// Model identifies the provider in logs and /health.
func (h *HashingProvider) Model() string {
	return "hashing"
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func (h *HashingProvider) tokenVector(token string) []float32 {
	hasher := fnv.New64a()
	_, _ = hasher.Write([]byte(token))
	state := hasher.Sum64() | 1

	vec := make([]float32, h.dimension)
	var norm float64
	for i := range vec {
		// xorshift64
		state ^= state << 13
		state ^= state >> 7
		state ^= state << 17
		v := float64(state>>11)/float64(1<<53)*2 - 1
		vec[i] = float32(v)
		norm += v * v
	}

	if norm > 0 {
		inv := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= inv
		}
	}
	return vec
}
