// Package config loads and validates run configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/nextgenai/docindex/internal/chunk"
	"github.com/nextgenai/docindex/internal/embed"
	derrors "github.com/nextgenai/docindex/internal/errors"
	"github.com/nextgenai/docindex/internal/store"
)

// Config is the complete docindex configuration.
//
// Values are applied in order of increasing precedence:
//  1. Hardcoded defaults
//  2. docindex.yaml in the working directory
//  3. .env in the working directory (loaded into the environment,
//     never overriding variables the shell already set)
//  4. Environment variables
//
// Credentials are environment-only. They never appear in YAML so config
// files stay safe to commit.
type Config struct {
	Chunking   ChunkingConfig   `yaml:"chunking"`
	Embeddings EmbeddingsConfig `yaml:"embeddings"`
	Index      IndexConfig      `yaml:"index"`
	Logging    LoggingConfig    `yaml:"logging"`

	// Credentials, populated only from the environment.
	OpenAIAPIKey   string `yaml:"-"`
	PineconeAPIKey string `yaml:"-"`
}

// ChunkingConfig configures the windowing pass.
type ChunkingConfig struct {
	// Size is the chunk window size in characters.
	Size int `yaml:"size"`

	// Overlap is how many trailing characters carry into the next window.
	Overlap int `yaml:"overlap"`
}

// EmbeddingsConfig configures the embedding provider.
type EmbeddingsConfig struct {
	Provider   string `yaml:"provider"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
	BatchSize  int    `yaml:"batch_size"`

	// InterBatchDelay is the pause between embedding requests, as a
	// duration string ("200ms").
	InterBatchDelay string `yaml:"inter_batch_delay"`

	CacheEnabled bool `yaml:"cache_enabled"`
	CacheSize    int  `yaml:"cache_size"`

	// MaxRetries enables the retry layer when positive.
	MaxRetries int `yaml:"max_retries"`
}

// IndexConfig configures the vector index target.
type IndexConfig struct {
	// Name is the index name. PINECONE_INDEX_NAME overrides it and is
	// the usual way to set it.
	Name string `yaml:"name"`

	UpsertBatchSize int `yaml:"upsert_batch_size"`

	// InterUpsertDelay is the pause between upsert requests.
	InterUpsertDelay string `yaml:"inter_upsert_delay"`

	// ClearWait is how long to wait after clearing the index before
	// upserting, giving the deletion time to propagate.
	ClearWait string `yaml:"clear_wait"`

	// SourceType is the `type` metadata tag stamped on every record.
	SourceType string `yaml:"source_type"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default durations, exposed for the pipeline.
const (
	DefaultClearWait = 3 * time.Second
)

// NewConfig returns the hardcoded defaults.
func NewConfig() *Config {
	return &Config{
		Chunking: ChunkingConfig{
			Size:    chunk.DefaultSize,
			Overlap: chunk.DefaultOverlap,
		},
		Embeddings: EmbeddingsConfig{
			Provider:        string(embed.ProviderOpenAI),
			Model:           embed.DefaultModel,
			Dimensions:      embed.DefaultDimensions,
			BatchSize:       embed.DefaultBatchSize,
			InterBatchDelay: embed.DefaultInterBatchDelay.String(),
			CacheEnabled:    true,
			CacheSize:       embed.DefaultCacheSize,
		},
		Index: IndexConfig{
			UpsertBatchSize:  store.DefaultUpsertBatchSize,
			InterUpsertDelay: store.DefaultInterUpsertDelay.String(),
			ClearWait:        DefaultClearWait.String(),
			SourceType:       store.RecordType,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load builds the effective configuration for the given directory.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	// godotenv never overrides variables already set in the shell, which
	// keeps the env > .env precedence without extra bookkeeping.
	envPath := filepath.Join(dir, ".env")
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			return nil, derrors.Wrap(derrors.ErrCodeConfigInvalid, err).
				WithDetail("file", envPath)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromFile merges docindex.yaml when present. A missing file is fine.
func (c *Config) loadFromFile(dir string) error {
	for _, name := range []string{"docindex.yaml", "docindex.yml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return derrors.Wrap(derrors.ErrCodeConfigInvalid, err).
				WithDetail("file", path)
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return derrors.Wrap(derrors.ErrCodeConfigInvalid, err).
				WithDetail("file", path)
		}
		return nil
	}
	return nil
}

// applyEnvOverrides applies environment variables, the highest-precedence
// layer. Credentials only exist here.
func (c *Config) applyEnvOverrides() {
	c.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	c.PineconeAPIKey = os.Getenv("PINECONE_API_KEY")

	if v := os.Getenv("PINECONE_INDEX_NAME"); v != "" {
		c.Index.Name = v
	}
	if v := os.Getenv("DOCINDEX_EMBEDDER"); v != "" {
		c.Embeddings.Provider = v
	}
	if v := os.Getenv("DOCINDEX_MODEL"); v != "" {
		c.Embeddings.Model = v
	}
	if v := os.Getenv("DOCINDEX_DIMENSIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Embeddings.Dimensions = n
		}
	}
	if v := os.Getenv("DOCINDEX_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("DOCINDEX_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
}

// Validate checks the final configuration. Credentials are validated
// separately by RequireCredentials so offline commands can skip them.
func (c *Config) Validate() error {
	if c.Chunking.Size <= 0 {
		return derrors.Newf(derrors.ErrCodeConfigInvalid,
			"chunking.size must be positive, got %d", c.Chunking.Size)
	}
	if c.Chunking.Overlap < 0 || c.Chunking.Overlap >= c.Chunking.Size {
		return derrors.Newf(derrors.ErrCodeConfigInvalid,
			"chunking.overlap must be in [0, size), got %d", c.Chunking.Overlap)
	}
	if c.Embeddings.Dimensions <= 0 {
		return derrors.Newf(derrors.ErrCodeConfigInvalid,
			"embeddings.dimensions must be positive, got %d", c.Embeddings.Dimensions)
	}
	if c.Embeddings.BatchSize <= 0 || c.Embeddings.BatchSize > embed.MaxBatchSize {
		return derrors.Newf(derrors.ErrCodeConfigInvalid,
			"embeddings.batch_size must be in (0, %d], got %d", embed.MaxBatchSize, c.Embeddings.BatchSize)
	}
	if c.Index.UpsertBatchSize <= 0 {
		return derrors.Newf(derrors.ErrCodeConfigInvalid,
			"index.upsert_batch_size must be positive, got %d", c.Index.UpsertBatchSize)
	}
	for _, d := range []struct {
		name  string
		value string
	}{
		{"embeddings.inter_batch_delay", c.Embeddings.InterBatchDelay},
		{"index.inter_upsert_delay", c.Index.InterUpsertDelay},
		{"index.clear_wait", c.Index.ClearWait},
	} {
		if d.value == "" {
			continue
		}
		if _, err := time.ParseDuration(d.value); err != nil {
			return derrors.Newf(derrors.ErrCodeConfigInvalid,
				"%s: invalid duration %q", d.name, d.value)
		}
	}
	return nil
}

// RequireCredentials checks everything an online ingestion run needs,
// before any stage touches the document or the network.
func (c *Config) RequireCredentials() error {
	usesOpenAI := c.Embeddings.Provider == "" || c.Embeddings.Provider == string(embed.ProviderOpenAI)
	if usesOpenAI && c.OpenAIAPIKey == "" {
		return derrors.Newf(derrors.ErrCodeMissingCredentials,
			"OPENAI_API_KEY is not set").
			WithSuggestion("export OPENAI_API_KEY or add it to .env")
	}
	if c.PineconeAPIKey == "" {
		return derrors.Newf(derrors.ErrCodeMissingCredentials,
			"PINECONE_API_KEY is not set").
			WithSuggestion("export PINECONE_API_KEY or add it to .env")
	}
	if c.Index.Name == "" {
		return derrors.Newf(derrors.ErrCodeMissingIndexName,
			"no index name configured").
			WithSuggestion("set PINECONE_INDEX_NAME or index.name in docindex.yaml")
	}
	return nil
}

// InterBatchDelay returns the parsed embedding pause.
func (c *Config) InterBatchDelay() time.Duration {
	return parseDurationOr(c.Embeddings.InterBatchDelay, embed.DefaultInterBatchDelay)
}

// InterUpsertDelay returns the parsed upsert pause.
func (c *Config) InterUpsertDelay() time.Duration {
	return parseDurationOr(c.Index.InterUpsertDelay, store.DefaultInterUpsertDelay)
}

// ClearWait returns the parsed post-clear propagation wait.
func (c *Config) ClearWait() time.Duration {
	return parseDurationOr(c.Index.ClearWait, DefaultClearWait)
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

// String renders a redacted summary for logging. Credentials never leave
// the process.
func (c *Config) String() string {
	return fmt.Sprintf("chunk=%d/%d embed=%s/%s@%d batch=%d index=%s",
		c.Chunking.Size, c.Chunking.Overlap,
		c.Embeddings.Provider, c.Embeddings.Model, c.Embeddings.Dimensions,
		c.Embeddings.BatchSize, c.Index.Name)
}
