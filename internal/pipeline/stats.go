package pipeline

import (
	"time"

	"github.com/nextgenai/docindex/internal/chunk"
)

// Summary holds the outcome of one ingestion run.
type Summary struct {
	RunID    string
	Document string
	Index    string

	Pages   int
	Chunks  int
	Records int
	Batches int

	Model      string
	Dimensions int

	Topics   map[string]int
	Tasks    map[string]int
	MinRoles map[int]int

	Warnings int
	Duration time.Duration
}

// buildDistributions tallies topic, task, and role distributions over the
// classified chunks.
func buildDistributions(chunks []chunk.Chunk) (topics map[string]int, tasks map[string]int, roles map[int]int) {
	topics = make(map[string]int)
	tasks = make(map[string]int)
	roles = make(map[int]int)
	for _, c := range chunks {
		topics[string(c.Topic)]++
		tasks[string(c.Task)]++
		roles[c.RoleMin]++
	}
	return topics, tasks, roles
}
