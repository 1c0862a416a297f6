package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nextgenai/docindex/internal/config"
	"github.com/nextgenai/docindex/internal/embed"
	"github.com/nextgenai/docindex/internal/pipeline"
	"github.com/nextgenai/docindex/internal/store"
	"github.com/nextgenai/docindex/internal/ui"
)

// newIngestCmd creates the ingest command.
func newIngestCmd() *cobra.Command {
	var (
		dryRun  bool
		offline bool
		quiet   bool
		noColor bool
		index   string
	)

	cmd := &cobra.Command{
		Use:   "ingest <document.pdf>",
		Short: "Clear the index and rebuild it from a PDF document",
		Long: `Ingest runs the full pipeline: the target index is emptied, the
document's pages are extracted and chunked, every chunk is classified and
embedded, and the vectors are written back in batches.

The index always reflects exactly one document after a successful run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := config.Load(configDir)
			if err != nil {
				return err
			}
			if offline {
				cfg.Embeddings.Provider = string(embed.ProviderStatic)
			}
			if index != "" {
				cfg.Index.Name = index
			}
			if !dryRun {
				if err := cfg.RequireCredentials(); err != nil {
					return err
				}
			}

			renderer := ui.NewRenderer(ui.Config{
				Output:  cmd.OutOrStdout(),
				NoColor: noColor,
				Quiet:   quiet,
			})

			return runIngest(ctx, cfg, args[0], dryRun, renderer)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false,
		"Chunk and classify only; do not touch the index")
	cmd.Flags().BoolVar(&offline, "offline", false,
		"Use deterministic local embeddings instead of the OpenAI API")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress progress output")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	cmd.Flags().StringVar(&index, "index", "", "Override the target index name")

	return cmd
}

// runIngest wires the pipeline together and executes one run.
func runIngest(ctx context.Context, cfg *config.Config, document string, dryRun bool, renderer ui.Renderer) error {
	opts := pipeline.Options{
		DocumentPath:    document,
		IndexName:       cfg.Index.Name,
		ChunkSize:       cfg.Chunking.Size,
		ChunkOverlap:    cfg.Chunking.Overlap,
		BatchSize:       cfg.Embeddings.BatchSize,
		InterBatchDelay: cfg.InterBatchDelay(),
		ClearWait:       cfg.ClearWait(),
		SourceType:      cfg.Index.SourceType,
		DryRun:          dryRun,
	}

	var (
		embedder embed.Embedder
		vectors  store.VectorStore
	)
	if dryRun {
		embedder = embed.NewStaticEmbedder(cfg.Embeddings.Dimensions)
	} else {
		lock, err := store.NewRunLock(cfg.Index.Name)
		if err != nil {
			return err
		}
		if err := lock.Acquire(); err != nil {
			return err
		}
		defer func() { _ = lock.Release() }()

		embedder, err = embed.New(embed.FactoryConfig{
			Provider:     embed.ProviderType(cfg.Embeddings.Provider),
			APIKey:       cfg.OpenAIAPIKey,
			Model:        cfg.Embeddings.Model,
			Dimensions:   cfg.Embeddings.Dimensions,
			CacheEnabled: cfg.Embeddings.CacheEnabled,
			CacheSize:    cfg.Embeddings.CacheSize,
			Retry:        retryConfig(cfg),
		})
		if err != nil {
			return err
		}

		vectors, err = store.NewPineconeStore(ctx, store.PineconeConfig{
			APIKey:           cfg.PineconeAPIKey,
			IndexName:        cfg.Index.Name,
			BatchSize:        cfg.Index.UpsertBatchSize,
			InterUpsertDelay: cfg.InterUpsertDelay(),
		}, nil)
		if err != nil {
			return err
		}
		defer func() { _ = vectors.Close() }()
	}
	defer func() { _ = embedder.Close() }()

	runner := pipeline.NewRunner(embedder, vectors, renderer, nil)
	summary, err := runner.Run(ctx, opts)
	if err != nil {
		return err
	}

	renderer.Complete(summaryStats(summary))
	return nil
}

func retryConfig(cfg *config.Config) embed.RetryConfig {
	rc := embed.DefaultRetryConfig()
	rc.MaxRetries = cfg.Embeddings.MaxRetries
	return rc
}

// summaryStats converts a pipeline summary into renderer stats.
func summaryStats(s *pipeline.Summary) ui.CompletionStats {
	return ui.CompletionStats{
		Document:   s.Document,
		Pages:      s.Pages,
		Chunks:     s.Chunks,
		Records:    s.Records,
		Duration:   s.Duration,
		Warnings:   s.Warnings,
		Topics:     s.Topics,
		Tasks:      s.Tasks,
		MinRoles:   s.MinRoles,
		Model:      s.Model,
		Dimensions: s.Dimensions,
		Index:      s.Index,
	}
}
