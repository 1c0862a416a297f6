// Package chunk splits page text into overlapping, classified windows.
package chunk

import (
	"fmt"
	"strings"

	"github.com/nextgenai/docindex/internal/classify"
	"github.com/nextgenai/docindex/internal/pdf"
)

// Chunking defaults, tuned for manual prose rather than code.
const (
	// DefaultSize is the target window size in bytes of page text.
	DefaultSize = 800

	// DefaultOverlap is how many bytes consecutive windows share. Overlap
	// preserves semantic continuity across chunk boundaries, which keeps
	// retrieval recall up when an answer straddles two chunks.
	DefaultOverlap = 150

	// MinChunkLen is the discard gate: trimmed windows must be strictly
	// longer than this to become chunks. Shorter fragments are page
	// furniture (headers, footers, stray lines) and are dropped silently.
	MinChunkLen = 100

	// boundaryRatio is how far into the window a sentence break must sit
	// before the window shrinks to it. Breaking earlier than 70% of the
	// target size would produce runty chunks for no boundary benefit.
	boundaryRatio = 0.7
)

// Chunk is a bounded, metadata-tagged slice of one page's text. It is the
// unit of embedding and retrieval. Chunks never span pages; chunks from the
// same page overlap by design. Created here, read-only afterwards.
type Chunk struct {
	ID      string
	Text    string
	Topic   classify.Topic
	Task    classify.Task
	RoleMin int
	Page    int
}

// Progress receives per-page chunking progress callbacks. Nil is allowed.
type Progress func(pagesDone, pagesTotal int)

// Chunker produces overlapping chunks from extracted pages. The chunk-id
// counter is owned by the instance, so ids stay unique and strictly
// increasing across every page of a run. Not safe for concurrent use; the
// pipeline is sequential by design.
type Chunker struct {
	size    int
	overlap int
	counter int
}

// NewChunker creates a chunker with the given window size and overlap.
// A non-positive size and a negative overlap fall back to the defaults;
// an overlap of zero is honored and produces disjoint windows.
func NewChunker(size, overlap int) *Chunker {
	if size <= 0 {
		size = DefaultSize
	}
	if overlap < 0 {
		overlap = DefaultOverlap
	}
	return &Chunker{size: size, overlap: overlap}
}

// ChunkPages walks pages in order and emits chunks in left-to-right text
// order within each page. Pages shorter than the discard gate yield no
// chunks and no error.
func (c *Chunker) ChunkPages(pages []pdf.Page, progress Progress) []Chunk {
	var chunks []Chunk
	for i, page := range pages {
		chunks = append(chunks, c.chunkPage(page)...)
		if progress != nil {
			progress(i+1, len(pages))
		}
	}
	return chunks
}

// chunkPage applies the sliding window to a single page.
func (c *Chunker) chunkPage(page pdf.Page) []Chunk {
	text := page.Text
	var chunks []Chunk

	start := 0
	for start < len(text) {
		end := start + c.size
		if end > len(text) {
			end = len(text)
		}
		reachedEnd := end == len(text)
		window := text[start:end]

		// When the window stops short of end-of-text, prefer to end it
		// at the last sentence terminator or newline, whichever sits
		// later, provided that boundary is past 70% of the target size.
		if !reachedEnd {
			breakPoint := lastBreak(window)
			if float64(breakPoint) > float64(c.size)*boundaryRatio {
				window = text[start : start+breakPoint+1]
			}
		}

		trimmed := strings.TrimSpace(window)
		if len(trimmed) > MinChunkLen {
			meta := classify.Classify(trimmed)
			chunks = append(chunks, Chunk{
				ID:      fmt.Sprintf("chunk-%d", c.counter),
				Text:    trimmed,
				Topic:   meta.Topic,
				Task:    meta.Task,
				RoleMin: meta.RoleMin,
				Page:    page.Number,
			})
			c.counter++
		}

		// A window that reached end-of-text consumed the rest of the
		// page; advancing the cursor from here could only re-emit
		// suffixes of it. Boundary shrinking never applies to the final
		// window, so nothing is skipped by stopping.
		if reachedEnd {
			break
		}

		// Advance so consecutive windows overlap by roughly c.overlap
		// bytes of source text. A mid-page window that trims to less
		// than the overlap would stall or walk the cursor backwards;
		// the floor of 1 guarantees termination.
		advance := len(trimmed) - c.overlap
		if advance < 1 {
			advance = 1
		}
		start += advance
	}

	return chunks
}

// lastBreak returns the index of the later of the last '.' and the last
// '\n' in window, or -1 when neither occurs.
func lastBreak(window string) int {
	period := strings.LastIndexByte(window, '.')
	newline := strings.LastIndexByte(window, '\n')
	if newline > period {
		return newline
	}
	return period
}

// Count returns how many chunks this chunker has emitted so far.
func (c *Chunker) Count() int {
	return c.counter
}
