package embed

import (
	"context"
	"log/slog"
	"sort"
	"time"

	openai "github.com/sashabaranov/go-openai"

	derrors "github.com/nextgenai/docindex/internal/errors"
)

// OpenAIConfig configures the OpenAI embedder.
type OpenAIConfig struct {
	APIKey     string
	Model      string
	Dimensions int

	// BaseURL overrides the API endpoint. Used by tests; empty means the
	// public endpoint.
	BaseURL string

	// RequestTimeout bounds a single embedding request.
	RequestTimeout time.Duration
}

// OpenAIEmbedder generates embeddings through the OpenAI embeddings API.
// One request embeds a whole batch; the response is index-aligned with the
// request, which the pipeline depends on to pair vectors with chunks.
type OpenAIEmbedder struct {
	client  *openai.Client
	model   string
	dims    int
	timeout time.Duration
}

// Verify interface implementation at compile time.
var _ Embedder = (*OpenAIEmbedder)(nil)

// NewOpenAIEmbedder creates an OpenAI embedder.
func NewOpenAIEmbedder(cfg OpenAIConfig) (*OpenAIEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, derrors.Newf(derrors.ErrCodeMissingCredentials,
			"OPENAI_API_KEY is not set").
			WithSuggestion("export OPENAI_API_KEY or add it to .env")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = DefaultDimensions
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAIEmbedder{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.Model,
		dims:    cfg.Dimensions,
		timeout: cfg.RequestTimeout,
	}, nil
}

// EmbedBatch embeds texts in a single API request. There is no local retry:
// a failed request propagates and aborts the run.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	reqCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.client.CreateEmbeddings(reqCtx, openai.EmbeddingRequest{
		Input:      texts,
		Model:      openai.EmbeddingModel(e.model),
		Dimensions: e.dims,
	})
	if err != nil {
		return nil, derrors.Wrap(derrors.ErrCodeEmbeddingFailed, err).
			WithDetail("model", e.model)
	}

	if len(resp.Data) != len(texts) {
		return nil, derrors.Newf(derrors.ErrCodeBatchMisaligned,
			"embedding response has %d vectors for %d inputs", len(resp.Data), len(texts))
	}

	// The API documents index-aligned responses; sorting by the Index
	// field makes the ordering contract explicit instead of assumed.
	data := make([]openai.Embedding, len(resp.Data))
	copy(data, resp.Data)
	sort.Slice(data, func(i, j int) bool { return data[i].Index < data[j].Index })

	vectors := make([][]float32, len(data))
	for i, d := range data {
		if len(d.Embedding) != e.dims {
			return nil, derrors.Newf(derrors.ErrCodeDimensionMismatch,
				"expected %d dimensions, got %d", e.dims, len(d.Embedding))
		}
		vectors[i] = d.Embedding
	}

	slog.Debug("embed_batch_done",
		slog.Int("texts", len(texts)), slog.Int("dims", e.dims))
	return vectors, nil
}

// Dimensions returns the configured output dimensionality.
func (e *OpenAIEmbedder) Dimensions() int {
	return e.dims
}

// ModelName returns the model identifier.
func (e *OpenAIEmbedder) ModelName() string {
	return e.model
}

// Close releases resources. The underlying HTTP client needs no teardown.
func (e *OpenAIEmbedder) Close() error {
	return nil
}
