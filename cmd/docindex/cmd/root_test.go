package cmd

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "github.com/nextgenai/docindex/internal/errors"
	"github.com/nextgenai/docindex/pkg/version"
)

// execute runs the root command with the given args and captures output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// clearCredentials removes credential variables for the test.
func clearCredentials(t *testing.T) {
	t.Helper()
	for _, key := range []string{"OPENAI_API_KEY", "PINECONE_API_KEY", "PINECONE_INDEX_NAME", "DOCINDEX_EMBEDDER"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestRootCmd_Help(t *testing.T) {
	out, err := execute(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "docindex")
	assert.Contains(t, out, "ingest")
	assert.Contains(t, out, "chunks")
}

func TestRootCmd_Version(t *testing.T) {
	out, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "docindex version "+version.Version)
}

func TestIngestCmd_RequiresDocumentArg(t *testing.T) {
	_, err := execute(t, "ingest", "--config-dir", t.TempDir())
	assert.Error(t, err)
}

func TestIngestCmd_MissingCredentialsAbortsEarly(t *testing.T) {
	clearCredentials(t)

	_, err := execute(t, "ingest", "guide.pdf", "--config-dir", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, derrors.ErrCodeMissingCredentials, derrors.CodeOf(err))
}

func TestIngestCmd_MissingIndexNameAbortsEarly(t *testing.T) {
	clearCredentials(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("PINECONE_API_KEY", "pc-test")

	_, err := execute(t, "ingest", "guide.pdf", "--config-dir", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, derrors.ErrCodeMissingIndexName, derrors.CodeOf(err))
}

func TestIngestCmd_DryRunMissingDocument(t *testing.T) {
	clearCredentials(t)

	// Dry runs need no credentials; the missing file is the first failure.
	_, err := execute(t, "ingest", "no-such-file.pdf", "--dry-run", "--config-dir", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, derrors.ErrCodeDocumentNotFound, derrors.CodeOf(err))
}

func TestChunksCmd_MissingDocument(t *testing.T) {
	clearCredentials(t)

	_, err := execute(t, "chunks", "no-such-file.pdf", "--config-dir", t.TempDir())
	require.Error(t, err)

	var docErr *derrors.DocError
	require.True(t, errors.As(err, &docErr))
	assert.Equal(t, derrors.ErrCodeDocumentNotFound, docErr.Code)
}
