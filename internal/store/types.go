// Package store persists embedded chunks to a vector index.
package store

import (
	"context"
	"time"
)

// Upsert constants.
const (
	// DefaultUpsertBatchSize is how many records go into one upsert
	// request.
	DefaultUpsertBatchSize = 100

	// DefaultInterUpsertDelay is the preventive pause between upsert
	// requests.
	DefaultInterUpsertDelay = 100 * time.Millisecond
)

// RecordType marks every record written by an ingestion run.
const RecordType = "documentation"

// Metadata is the chunk payload stored alongside each vector. Field names
// follow the index's existing schema so queries written against earlier
// loads keep working.
type Metadata struct {
	Text    string `json:"text"`
	Page    int    `json:"page"`
	Topic   string `json:"topic"`
	Task    string `json:"task"`
	RoleMin int    `json:"role_min"`
	Source  string `json:"source"`
	Type    string `json:"type"`
}

// Record is one vector plus its metadata, keyed by chunk id.
type Record struct {
	ID       string    `json:"id"`
	Values   []float32 `json:"values"`
	Metadata Metadata  `json:"metadata"`
}

// VectorStore abstracts the vector index. The pipeline clears the index
// before writing so each run fully replaces the previous load.
type VectorStore interface {
	// Clear deletes every vector in the index. Implementations report
	// a missing index as ErrCodeIndexNotFound.
	Clear(ctx context.Context) error

	// Upsert writes records in batches.
	Upsert(ctx context.Context, records []Record) error

	// Close releases resources.
	Close() error
}
