// Package ui provides terminal output for ingestion progress and summary.
package ui

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
)

// Stage represents an ingestion stage.
type Stage int

const (
	// StageClearing is the index clear stage.
	StageClearing Stage = iota
	// StageReading is the document page extraction stage.
	StageReading
	// StageChunking is the text chunking stage.
	StageChunking
	// StageEmbedding is the embedding generation stage.
	StageEmbedding
	// StageUpserting is the vector upsert stage.
	StageUpserting
	// StageComplete indicates ingestion is complete.
	StageComplete
)

// String returns the human-readable stage name.
func (s Stage) String() string {
	switch s {
	case StageClearing:
		return "Clearing"
	case StageReading:
		return "Reading"
	case StageChunking:
		return "Chunking"
	case StageEmbedding:
		return "Embedding"
	case StageUpserting:
		return "Upserting"
	case StageComplete:
		return "Complete"
	default:
		return "Unknown"
	}
}

// Icon returns the short stage icon for plain text output.
func (s Stage) Icon() string {
	switch s {
	case StageClearing:
		return "CLEAR"
	case StageReading:
		return "READ"
	case StageChunking:
		return "CHUNK"
	case StageEmbedding:
		return "EMBED"
	case StageUpserting:
		return "UPSERT"
	case StageComplete:
		return "DONE"
	default:
		return "???"
	}
}

// ProgressEvent represents a progress update.
type ProgressEvent struct {
	Stage   Stage
	Current int
	Total   int
	Message string
}

// ErrorEvent represents an error during ingestion.
type ErrorEvent struct {
	Stage  Stage
	Err    error
	IsWarn bool
}

// CompletionStats contains final ingestion statistics.
type CompletionStats struct {
	Document string
	Pages    int
	Chunks   int
	Records  int
	Duration time.Duration
	Errors   int
	Warnings int

	// Distributions over the classified chunks, by name or minimum role.
	Topics   map[string]int
	Tasks    map[string]int
	MinRoles map[int]int

	Model      string
	Dimensions int
	Index      string
}

// Renderer defines the interface for progress display.
type Renderer interface {
	// UpdateProgress updates progress display.
	UpdateProgress(event ProgressEvent)

	// AddError adds an error to display.
	AddError(event ErrorEvent)

	// Complete renders the final summary.
	Complete(stats CompletionStats)
}

// Config configures the renderer.
type Config struct {
	Output  io.Writer
	NoColor bool
	Quiet   bool
}

// IsTerminal reports whether w is an interactive terminal. Piped output
// gets no color.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// NewRenderer creates the renderer for the given config, detecting color
// support from the output writer.
func NewRenderer(cfg Config) Renderer {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	if !cfg.NoColor && !IsTerminal(cfg.Output) {
		cfg.NoColor = true
	}
	return NewPlainRenderer(cfg)
}
