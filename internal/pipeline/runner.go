// Package pipeline drives one ingestion run end to end.
package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/nextgenai/docindex/internal/chunk"
	"github.com/nextgenai/docindex/internal/embed"
	derrors "github.com/nextgenai/docindex/internal/errors"
	"github.com/nextgenai/docindex/internal/pdf"
	"github.com/nextgenai/docindex/internal/store"
	"github.com/nextgenai/docindex/internal/ui"
)

// Options configures one ingestion run.
type Options struct {
	DocumentPath string
	IndexName    string

	ChunkSize    int
	ChunkOverlap int

	BatchSize       int
	InterBatchDelay time.Duration

	// ClearWait is how long to wait after clearing the index before
	// writing, giving the deletion time to propagate.
	ClearWait time.Duration

	// SourceType is the `type` metadata tag stamped on every record.
	// Empty falls back to the standard documentation tag.
	SourceType string

	// DryRun stops after chunking: nothing is embedded or written.
	DryRun bool
}

// PageReader extracts pages from a document.
type PageReader interface {
	ReadPages(path string, progress pdf.Progress) ([]pdf.Page, error)
}

// Runner executes the clear-and-rebuild ingestion sequence: clear the
// index, extract pages, chunk and classify, embed in batches, upsert.
type Runner struct {
	embedder embed.Embedder
	vectors  store.VectorStore
	renderer ui.Renderer
	logger   *slog.Logger

	// pages and sleep are swapped out by tests.
	pages PageReader
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRunner creates a runner. A nil renderer or logger falls back to a
// no-op renderer and the default logger.
func NewRunner(embedder embed.Embedder, vectors store.VectorStore, renderer ui.Renderer, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if renderer == nil {
		renderer = ui.NewPlainRenderer(ui.Config{Output: discardWriter{}, NoColor: true})
	}
	return &Runner{
		embedder: embedder,
		vectors:  vectors,
		renderer: renderer,
		logger:   logger,
		pages:    pdf.NewReader(logger),
		sleep:    sleepCtx,
	}
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Run executes the full pipeline. It returns a summary on success; on
// failure earlier stages are not rolled back, and the next successful run
// replaces everything via the initial clear.
func (r *Runner) Run(ctx context.Context, opts Options) (*Summary, error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := r.logger.With(slog.String("run_id", runID))

	if opts.BatchSize <= 0 {
		opts.BatchSize = embed.DefaultBatchSize
	}

	summary := &Summary{
		RunID:    runID,
		Document: filepath.Base(opts.DocumentPath),
		Index:    opts.IndexName,
	}

	logger.Info("run_started",
		slog.String("document", opts.DocumentPath),
		slog.String("index", opts.IndexName),
		slog.Bool("dry_run", opts.DryRun))

	if !opts.DryRun {
		if err := r.clearIndex(ctx, opts, logger, summary); err != nil {
			return nil, err
		}
	}

	pages, err := r.readPages(opts, logger)
	if err != nil {
		return nil, err
	}
	summary.Pages = len(pages)

	chunks := r.chunkPages(pages, opts, logger)
	summary.Chunks = len(chunks)
	summary.Topics, summary.Tasks, summary.MinRoles = buildDistributions(chunks)

	if opts.DryRun {
		summary.Duration = time.Since(start)
		logger.Info("run_finished_dry", slog.Int("chunks", len(chunks)))
		return summary, nil
	}

	embedded, err := r.embedChunks(ctx, chunks, opts, logger)
	if err != nil {
		return nil, err
	}
	summary.Batches = (len(chunks) + opts.BatchSize - 1) / opts.BatchSize
	summary.Model = r.embedder.ModelName()
	summary.Dimensions = r.embedder.Dimensions()

	if err := r.upsertRecords(ctx, embedded, opts, logger); err != nil {
		return nil, err
	}
	summary.Records = len(embedded)

	summary.Duration = time.Since(start)
	logger.Info("run_finished",
		slog.Int("pages", summary.Pages),
		slog.Int("chunks", summary.Chunks),
		slog.Int("records", summary.Records),
		slog.Duration("duration", summary.Duration))
	return summary, nil
}

// clearIndex empties the index before the rebuild. A failed clear is
// recovered: an already-empty index raises a delete error on some
// backends, and aborting there would make first runs impossible. The
// warning is surfaced so a genuinely stale index does not pass silently.
// Cancellation still aborts.
func (r *Runner) clearIndex(ctx context.Context, opts Options, logger *slog.Logger, summary *Summary) error {
	r.renderer.UpdateProgress(ui.ProgressEvent{
		Stage:   ui.StageClearing,
		Message: "clearing index " + opts.IndexName,
	})

	if err := r.vectors.Clear(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		summary.Warnings++
		logger.Warn("clear_skipped", slog.String("error", err.Error()))
		r.renderer.AddError(ui.ErrorEvent{Stage: ui.StageClearing, Err: err, IsWarn: true})
		return nil
	}

	logger.Info("index_cleared", slog.String("index", opts.IndexName))
	return r.sleep(ctx, opts.ClearWait)
}

func (r *Runner) readPages(opts Options, logger *slog.Logger) ([]pdf.Page, error) {
	pages, err := r.pages.ReadPages(opts.DocumentPath, func(done, total int) {
		r.renderer.UpdateProgress(ui.ProgressEvent{
			Stage: ui.StageReading, Current: done, Total: total, Message: "pages",
		})
	})
	if err != nil {
		logger.Error("read_failed", slog.String("error", err.Error()))
		return nil, err
	}
	logger.Info("pages_extracted", slog.Int("pages", len(pages)))
	return pages, nil
}

func (r *Runner) chunkPages(pages []pdf.Page, opts Options, logger *slog.Logger) []chunk.Chunk {
	chunker := chunk.NewChunker(opts.ChunkSize, opts.ChunkOverlap)
	chunks := chunker.ChunkPages(pages, func(done, total int) {
		r.renderer.UpdateProgress(ui.ProgressEvent{
			Stage: ui.StageChunking, Current: done, Total: total, Message: "pages chunked",
		})
	})
	logger.Info("chunks_built", slog.Int("chunks", len(chunks)))
	return chunks
}

// embedChunks embeds in batches, pausing between requests but not after
// the last one.
func (r *Runner) embedChunks(ctx context.Context, chunks []chunk.Chunk, opts Options, logger *slog.Logger) ([]store.Record, error) {
	records := make([]store.Record, 0, len(chunks))
	source := filepath.Base(opts.DocumentPath)
	recordType := opts.SourceType
	if recordType == "" {
		recordType = store.RecordType
	}

	for offset := 0; offset < len(chunks); offset += opts.BatchSize {
		end := offset + opts.BatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[offset:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}

		vectors, err := r.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			logger.Error("embed_failed",
				slog.Int("from", offset), slog.Int("to", end),
				slog.String("error", err.Error()))
			return nil, err
		}
		if len(vectors) != len(batch) {
			return nil, derrors.Newf(derrors.ErrCodeBatchMisaligned,
				"got %d vectors for %d chunks", len(vectors), len(batch))
		}

		for i, c := range batch {
			records = append(records, store.Record{
				ID:     c.ID,
				Values: vectors[i],
				Metadata: store.Metadata{
					Text:    c.Text,
					Page:    c.Page,
					Topic:   string(c.Topic),
					Task:    string(c.Task),
					RoleMin: c.RoleMin,
					Source:  source,
					Type:    recordType,
				},
			})
		}

		r.renderer.UpdateProgress(ui.ProgressEvent{
			Stage: ui.StageEmbedding, Current: end, Total: len(chunks), Message: "chunks embedded",
		})

		if end < len(chunks) {
			if err := r.sleep(ctx, opts.InterBatchDelay); err != nil {
				return nil, err
			}
		}
	}
	return records, nil
}

func (r *Runner) upsertRecords(ctx context.Context, records []store.Record, opts Options, logger *slog.Logger) error {
	r.renderer.UpdateProgress(ui.ProgressEvent{
		Stage: ui.StageUpserting, Current: 0, Total: len(records), Message: "records",
	})

	if err := r.vectors.Upsert(ctx, records); err != nil {
		logger.Error("upsert_failed", slog.String("error", err.Error()))
		return err
	}

	r.renderer.UpdateProgress(ui.ProgressEvent{
		Stage: ui.StageUpserting, Current: len(records), Total: len(records), Message: "records",
	})
	logger.Info("records_upserted", slog.Int("records", len(records)))
	return nil
}
