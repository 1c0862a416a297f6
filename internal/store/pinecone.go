package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	derrors "github.com/nextgenai/docindex/internal/errors"
)

// DefaultControlPlaneURL is the Pinecone control-plane endpoint used to
// resolve an index name to its data-plane host.
const DefaultControlPlaneURL = "https://api.pinecone.io"

// PineconeConfig configures the Pinecone store.
type PineconeConfig struct {
	APIKey    string
	IndexName string

	// ControlPlaneURL overrides the control-plane endpoint. Used by
	// tests; empty means the public endpoint.
	ControlPlaneURL string

	// Host skips index resolution when set. The value comes back from
	// the control plane normally; tests set it directly.
	Host string

	// BatchSize is the number of records per upsert request.
	BatchSize int

	// InterUpsertDelay is the pause between upsert requests.
	InterUpsertDelay time.Duration

	// RequestTimeout bounds a single API request.
	RequestTimeout time.Duration
}

// PineconeStore writes vectors to a Pinecone index over its REST API.
type PineconeStore struct {
	client  *http.Client
	apiKey  string
	index   string
	host    string
	batch   int
	delay   time.Duration
	timeout time.Duration
	logger  *slog.Logger
}

// Verify interface implementation at compile time.
var _ VectorStore = (*PineconeStore)(nil)

// describeIndexResponse is the control-plane payload, reduced to the
// fields the store needs.
type describeIndexResponse struct {
	Name      string `json:"name"`
	Dimension int    `json:"dimension"`
	Host      string `json:"host"`
}

// deleteRequest clears the whole index.
type deleteRequest struct {
	DeleteAll bool `json:"deleteAll"`
}

// upsertRequest carries one batch of records.
type upsertRequest struct {
	Vectors []Record `json:"vectors"`
}

type upsertResponse struct {
	UpsertedCount int `json:"upsertedCount"`
}

// NewPineconeStore creates a store for the named index, resolving its
// data-plane host through the control plane.
func NewPineconeStore(ctx context.Context, cfg PineconeConfig, logger *slog.Logger) (*PineconeStore, error) {
	if cfg.APIKey == "" {
		return nil, derrors.Newf(derrors.ErrCodeMissingCredentials,
			"PINECONE_API_KEY is not set").
			WithSuggestion("export PINECONE_API_KEY or add it to .env")
	}
	if cfg.IndexName == "" {
		return nil, derrors.Newf(derrors.ErrCodeMissingIndexName,
			"PINECONE_INDEX_NAME is not set").
			WithSuggestion("export PINECONE_INDEX_NAME or add it to .env")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultUpsertBatchSize
	}
	if cfg.InterUpsertDelay <= 0 {
		cfg.InterUpsertDelay = DefaultInterUpsertDelay
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &PineconeStore{
		client:  &http.Client{},
		apiKey:  cfg.APIKey,
		index:   cfg.IndexName,
		host:    normalizeHost(cfg.Host),
		batch:   cfg.BatchSize,
		delay:   cfg.InterUpsertDelay,
		timeout: cfg.RequestTimeout,
		logger:  logger,
	}

	if s.host == "" {
		controlPlane := cfg.ControlPlaneURL
		if controlPlane == "" {
			controlPlane = DefaultControlPlaneURL
		}
		host, err := s.resolveHost(ctx, controlPlane)
		if err != nil {
			return nil, err
		}
		s.host = normalizeHost(host)
	}

	return s, nil
}

// normalizeHost makes sure the data-plane host carries a scheme. The
// control plane returns bare hostnames.
func normalizeHost(host string) string {
	if host == "" || strings.Contains(host, "://") {
		return host
	}
	return "https://" + host
}

// resolveHost asks the control plane for the index's data-plane host.
func (s *PineconeStore) resolveHost(ctx context.Context, controlPlane string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/indexes/%s", controlPlane, s.index)
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return "", derrors.Wrap(derrors.ErrCodeInternal, err)
	}
	req.Header.Set("Api-Key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", derrors.Wrap(derrors.ErrCodeIndexNotFound, err).
			WithDetail("index", s.index)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return "", derrors.Newf(derrors.ErrCodeIndexNotFound,
			"index %q does not exist", s.index).
			WithSuggestion("create the index before ingesting, or fix PINECONE_INDEX_NAME")
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", derrors.Newf(derrors.ErrCodeIndexNotFound,
			"describe index returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var described describeIndexResponse
	if err := json.NewDecoder(resp.Body).Decode(&described); err != nil {
		return "", derrors.Wrap(derrors.ErrCodeIndexNotFound, err)
	}
	if described.Host == "" {
		return "", derrors.Newf(derrors.ErrCodeIndexNotFound,
			"index %q has no data-plane host", s.index)
	}

	s.logger.Debug("index_resolved",
		slog.String("index", described.Name),
		slog.Int("dimension", described.Dimension))
	return described.Host, nil
}

// Clear deletes all vectors in the index. A 404 from the data plane means
// there is nothing to delete (serverless indexes 404 on empty namespaces)
// and counts as success.
func (s *PineconeStore) Clear(ctx context.Context) error {
	body, err := json.Marshal(deleteRequest{DeleteAll: true})
	if err != nil {
		return derrors.Wrap(derrors.ErrCodeInternal, err)
	}

	status, raw, err := s.post(ctx, "/vectors/delete", body)
	if err != nil {
		return derrors.Wrap(derrors.ErrCodeClearFailed, err).
			WithDetail("index", s.index)
	}

	switch {
	case status == http.StatusNotFound:
		s.logger.Debug("clear_nothing_to_delete", slog.String("index", s.index))
		return nil
	case status >= 300:
		return derrors.Newf(derrors.ErrCodeClearFailed,
			"delete all returned status %d: %s", status, strings.TrimSpace(string(raw)))
	}

	s.logger.Info("index_cleared", slog.String("index", s.index))
	return nil
}

// Upsert writes records in batches of the configured size, pausing between
// batches. Any failed batch aborts the run; earlier batches stay written,
// and the next successful run replaces them via Clear.
func (s *PineconeStore) Upsert(ctx context.Context, records []Record) error {
	for start := 0; start < len(records); start += s.batch {
		end := start + s.batch
		if end > len(records) {
			end = len(records)
		}

		if err := s.upsertBatch(ctx, records[start:end]); err != nil {
			return err
		}
		s.logger.Debug("upsert_batch_done",
			slog.Int("from", start), slog.Int("to", end), slog.Int("total", len(records)))

		if end < len(records) {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.delay):
			}
		}
	}
	return nil
}

func (s *PineconeStore) upsertBatch(ctx context.Context, batch []Record) error {
	body, err := json.Marshal(upsertRequest{Vectors: batch})
	if err != nil {
		return derrors.Wrap(derrors.ErrCodeInternal, err)
	}

	status, raw, err := s.post(ctx, "/vectors/upsert", body)
	if err != nil {
		return derrors.Wrap(derrors.ErrCodeUpsertFailed, err).
			WithDetail("index", s.index)
	}

	if status >= 300 {
		return derrors.Newf(derrors.ErrCodeUpsertFailed,
			"upsert returned status %d: %s", status, strings.TrimSpace(string(raw)))
	}

	var result upsertResponse
	if err := json.Unmarshal(raw, &result); err == nil &&
		result.UpsertedCount != 0 && result.UpsertedCount != len(batch) {
		return derrors.Newf(derrors.ErrCodeUpsertFailed,
			"upsert accepted %d of %d records", result.UpsertedCount, len(batch))
	}
	return nil
}

// post sends a JSON request to the data plane and drains the response.
func (s *PineconeStore) post(ctx context.Context, path string, body []byte) (int, []byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, s.host+path, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Api-Key", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, raw, nil
}

// Host returns the resolved data-plane host.
func (s *PineconeStore) Host() string {
	return s.host
}

// Close releases idle connections.
func (s *PineconeStore) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
