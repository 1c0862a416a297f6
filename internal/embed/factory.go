package embed

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

// ProviderType selects an embedding provider.
type ProviderType string

const (
	// ProviderOpenAI uses the OpenAI embeddings API (default).
	ProviderOpenAI ProviderType = "openai"

	// ProviderStatic uses hash-based embeddings (offline runs and tests).
	ProviderStatic ProviderType = "static"
)

// FactoryConfig carries everything needed to construct the run's embedder.
type FactoryConfig struct {
	Provider       ProviderType
	APIKey         string
	Model          string
	Dimensions     int
	RequestTimeout time.Duration

	CacheEnabled bool
	CacheSize    int

	Retry RetryConfig
}

// New creates an embedder based on provider type. The DOCINDEX_EMBEDDER
// environment variable overrides the configured provider, which lets a shell
// force a static (offline) run without touching config. The result is
// wrapped with the LRU cache when enabled and with the retry layer when
// retries are configured.
func New(cfg FactoryConfig) (Embedder, error) {
	provider := cfg.Provider
	if env := os.Getenv("DOCINDEX_EMBEDDER"); env != "" {
		provider = ProviderType(strings.ToLower(env))
	}

	var (
		embedder Embedder
		err      error
	)
	switch provider {
	case ProviderStatic:
		embedder = NewStaticEmbedder(cfg.Dimensions)
	case ProviderOpenAI, "":
		embedder, err = NewOpenAIEmbedder(OpenAIConfig{
			APIKey:         cfg.APIKey,
			Model:          cfg.Model,
			Dimensions:     cfg.Dimensions,
			RequestTimeout: cfg.RequestTimeout,
		})
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", provider)
	}
	if err != nil {
		return nil, err
	}

	if cfg.CacheEnabled {
		embedder = NewCachedEmbedder(embedder, cfg.CacheSize)
	}
	embedder = WithRetry(embedder, cfg.Retry)

	slog.Debug("embedder_ready",
		slog.String("provider", string(provider)),
		slog.String("model", embedder.ModelName()),
		slog.Int("dims", embedder.Dimensions()))
	return embedder, nil
}
