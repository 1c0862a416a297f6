package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "github.com/nextgenai/docindex/internal/errors"
)

// fakeDataPlane records delete and upsert requests.
type fakeDataPlane struct {
	mu           sync.Mutex
	deleteCalls  int
	upsertCalls  [][]Record
	deleteStatus int
	upsertStatus int
	apiKeys      []string
}

func newFakeDataPlane() *fakeDataPlane {
	return &fakeDataPlane{deleteStatus: http.StatusOK, upsertStatus: http.StatusOK}
}

func (f *fakeDataPlane) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.apiKeys = append(f.apiKeys, r.Header.Get("Api-Key"))

		switch r.URL.Path {
		case "/vectors/delete":
			f.deleteCalls++
			var req deleteRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.True(t, req.DeleteAll)
			w.WriteHeader(f.deleteStatus)
			_, _ = w.Write([]byte(`{}`))
		case "/vectors/upsert":
			var req upsertRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			f.upsertCalls = append(f.upsertCalls, req.Vectors)
			w.WriteHeader(f.upsertStatus)
			_ = json.NewEncoder(w).Encode(upsertResponse{UpsertedCount: len(req.Vectors)})
		default:
			http.NotFound(w, r)
		}
	})
}

func newTestStore(t *testing.T, fake *fakeDataPlane, cfg PineconeConfig) (*PineconeStore, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(fake.handler(t))
	t.Cleanup(server.Close)

	cfg.APIKey = "test-key"
	cfg.IndexName = "docs"
	cfg.Host = server.URL
	s, err := NewPineconeStore(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, server
}

func makeRecords(n int) []Record {
	records := make([]Record, n)
	for i := range records {
		records[i] = Record{
			ID:     "chunk-" + string(rune('a'+i%26)),
			Values: []float32{float32(i), 1},
			Metadata: Metadata{
				Text: "text", Page: 1, Topic: "general", Task: "reference",
				RoleMin: 1, Source: "guide.pdf", Type: RecordType,
			},
		}
	}
	return records
}

func TestNewPineconeStore_RequiresCredentials(t *testing.T) {
	_, err := NewPineconeStore(context.Background(), PineconeConfig{IndexName: "docs"}, nil)
	require.Error(t, err)
	assert.Equal(t, derrors.ErrCodeMissingCredentials, derrors.CodeOf(err))

	_, err = NewPineconeStore(context.Background(), PineconeConfig{APIKey: "k"}, nil)
	require.Error(t, err)
	assert.Equal(t, derrors.ErrCodeMissingIndexName, derrors.CodeOf(err))
}

func TestNewPineconeStore_ResolvesHostFromControlPlane(t *testing.T) {
	dataPlane := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer dataPlane.Close()

	controlPlane := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/indexes/docs", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("Api-Key"))
		_ = json.NewEncoder(w).Encode(describeIndexResponse{
			Name: "docs", Dimension: 512, Host: dataPlane.URL,
		})
	}))
	defer controlPlane.Close()

	s, err := NewPineconeStore(context.Background(), PineconeConfig{
		APIKey:          "test-key",
		IndexName:       "docs",
		ControlPlaneURL: controlPlane.URL,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, dataPlane.URL, s.Host())
}

func TestNewPineconeStore_AddsSchemeToBareHost(t *testing.T) {
	controlPlane := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(describeIndexResponse{
			Name: "docs", Host: "docs-abc123.svc.pinecone.io",
		})
	}))
	defer controlPlane.Close()

	s, err := NewPineconeStore(context.Background(), PineconeConfig{
		APIKey:          "test-key",
		IndexName:       "docs",
		ControlPlaneURL: controlPlane.URL,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://docs-abc123.svc.pinecone.io", s.Host())
}

func TestNewPineconeStore_UnknownIndex(t *testing.T) {
	controlPlane := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer controlPlane.Close()

	_, err := NewPineconeStore(context.Background(), PineconeConfig{
		APIKey:          "test-key",
		IndexName:       "missing",
		ControlPlaneURL: controlPlane.URL,
	}, nil)
	require.Error(t, err)
	assert.Equal(t, derrors.ErrCodeIndexNotFound, derrors.CodeOf(err))
}

func TestPineconeStore_Clear(t *testing.T) {
	fake := newFakeDataPlane()
	s, _ := newTestStore(t, fake, PineconeConfig{})

	require.NoError(t, s.Clear(context.Background()))
	assert.Equal(t, 1, fake.deleteCalls)
	assert.Equal(t, "test-key", fake.apiKeys[0])
}

func TestPineconeStore_ClearEmptyIndexIsSuccess(t *testing.T) {
	fake := newFakeDataPlane()
	fake.deleteStatus = http.StatusNotFound
	s, _ := newTestStore(t, fake, PineconeConfig{})

	assert.NoError(t, s.Clear(context.Background()))
}

func TestPineconeStore_ClearServerError(t *testing.T) {
	fake := newFakeDataPlane()
	fake.deleteStatus = http.StatusInternalServerError
	s, _ := newTestStore(t, fake, PineconeConfig{})

	err := s.Clear(context.Background())
	require.Error(t, err)
	assert.Equal(t, derrors.ErrCodeClearFailed, derrors.CodeOf(err))
}

func TestPineconeStore_UpsertBatches(t *testing.T) {
	fake := newFakeDataPlane()
	s, _ := newTestStore(t, fake, PineconeConfig{BatchSize: 100, InterUpsertDelay: 1})

	require.NoError(t, s.Upsert(context.Background(), makeRecords(250)))

	require.Len(t, fake.upsertCalls, 3)
	assert.Len(t, fake.upsertCalls[0], 100)
	assert.Len(t, fake.upsertCalls[1], 100)
	assert.Len(t, fake.upsertCalls[2], 50)
}

func TestPineconeStore_UpsertPreservesMetadata(t *testing.T) {
	fake := newFakeDataPlane()
	s, _ := newTestStore(t, fake, PineconeConfig{InterUpsertDelay: 1})

	records := []Record{{
		ID:     "chunk-0",
		Values: []float32{0.1, 0.2},
		Metadata: Metadata{
			Text: "How to check in a child", Page: 3, Topic: "attendance",
			Task: "procedure", RoleMin: 1, Source: "guide.pdf", Type: RecordType,
		},
	}}
	require.NoError(t, s.Upsert(context.Background(), records))

	require.Len(t, fake.upsertCalls, 1)
	got := fake.upsertCalls[0][0]
	assert.Equal(t, "chunk-0", got.ID)
	assert.Equal(t, "attendance", got.Metadata.Topic)
	assert.Equal(t, 3, got.Metadata.Page)
	assert.Equal(t, "documentation", got.Metadata.Type)
}

func TestPineconeStore_UpsertFailureAborts(t *testing.T) {
	fake := newFakeDataPlane()
	fake.upsertStatus = http.StatusBadRequest
	s, _ := newTestStore(t, fake, PineconeConfig{BatchSize: 10, InterUpsertDelay: 1})

	err := s.Upsert(context.Background(), makeRecords(25))
	require.Error(t, err)
	assert.Equal(t, derrors.ErrCodeUpsertFailed, derrors.CodeOf(err))
	assert.Len(t, fake.upsertCalls, 1, "first failed batch should stop the run")
}

func TestPineconeStore_UpsertEmpty(t *testing.T) {
	fake := newFakeDataPlane()
	s, _ := newTestStore(t, fake, PineconeConfig{})

	require.NoError(t, s.Upsert(context.Background(), nil))
	assert.Empty(t, fake.upsertCalls)
}
