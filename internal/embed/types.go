// Package embed generates vector embeddings for chunk text.
package embed

import (
	"context"
	"math"
	"time"
)

// Common embedding constants.
const (
	// DefaultModel is the embedding model used unless configured otherwise.
	DefaultModel = "text-embedding-3-small"

	// DefaultDimensions is the requested output dimensionality. 512 keeps
	// index storage small while staying well inside the model's range.
	DefaultDimensions = 512

	// DefaultBatchSize is how many chunk texts go into one embedding
	// request.
	DefaultBatchSize = 100

	// MaxBatchSize caps the batch size to prevent oversized requests.
	MaxBatchSize = 256

	// DefaultInterBatchDelay is the preventive pause between embedding
	// requests. It keeps the run under service rate limits; it is a
	// policy knob, not a correctness requirement.
	DefaultInterBatchDelay = 200 * time.Millisecond

	// DefaultRequestTimeout bounds a single embedding request.
	DefaultRequestTimeout = 60 * time.Second
)

// Static embedder constants.
const (
	// StaticDimensions is the default dimension for the static embedder.
	StaticDimensions = 512
)

// Embedder converts batches of texts into fixed-dimension vectors.
//
// EmbedBatch is order-preserving and cardinality-preserving: result[i] is
// the vector for texts[i], and len(result) == len(texts) on success.
type Embedder interface {
	// EmbedBatch generates embeddings for multiple texts in one request.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding dimension.
	Dimensions() int

	// ModelName returns the model identifier.
	ModelName() string

	// Close releases resources.
	Close() error
}

// normalizeVector normalizes a vector to unit length.
func normalizeVector(v []float32) []float32 {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}

	magnitude := math.Sqrt(sumSquares)
	if magnitude == 0 {
		return v
	}

	normalized := make([]float32, len(v))
	for i, val := range v {
		normalized[i] = float32(float64(val) / magnitude)
	}
	return normalized
}
