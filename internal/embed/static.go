package embed

import (
	"context"
	"hash/fnv"
	"regexp"
	"strings"
)

// StaticEmbedder generates embeddings using a hash-based approach.
// Works without external dependencies (no network, no credentials).
// Deterministic and fast, with reduced semantic quality; used for offline
// smoke runs and tests.
type StaticEmbedder struct {
	dims int
}

// Verify interface implementation at compile time.
var _ Embedder = (*StaticEmbedder)(nil)

// Weights for vector generation.
const (
	tokenWeight = 0.7
	ngramWeight = 0.3
	ngramSize   = 3
)

// tokenRegex matches alphanumeric sequences.
var tokenRegex = regexp.MustCompile(`[a-zA-Z0-9]+`)

// NewStaticEmbedder creates a static embedder with the given dimensionality.
func NewStaticEmbedder(dims int) *StaticEmbedder {
	if dims <= 0 {
		dims = StaticDimensions
	}
	return &StaticEmbedder{dims: dims}
}

// EmbedBatch generates embeddings for multiple texts, order-preserving.
func (e *StaticEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			vectors[i] = make([]float32, e.dims)
			continue
		}
		vectors[i] = normalizeVector(e.generateVector(trimmed))
	}
	return vectors, nil
}

// generateVector creates a hash-based vector from text: lowercased tokens
// weighted at 0.7 plus character trigrams at 0.3, each hashed to an index.
func (e *StaticEmbedder) generateVector(text string) []float32 {
	vector := make([]float32, e.dims)

	lower := strings.ToLower(text)
	for _, token := range tokenRegex.FindAllString(lower, -1) {
		vector[hashToIndex(token, e.dims)] += tokenWeight
	}

	compact := strings.Join(strings.Fields(lower), " ")
	for i := 0; i+ngramSize <= len(compact); i++ {
		vector[hashToIndex(compact[i:i+ngramSize], e.dims)] += ngramWeight
	}

	return vector
}

// hashToIndex maps a string to a vector index via FNV-1a.
func hashToIndex(s string, dims int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return int(h.Sum32() % uint32(dims))
}

// Dimensions returns the embedding dimension.
func (e *StaticEmbedder) Dimensions() int {
	return e.dims
}

// ModelName returns the model identifier.
func (e *StaticEmbedder) ModelName() string {
	return "static-hash"
}

// Close releases resources.
func (e *StaticEmbedder) Close() error {
	return nil
}
