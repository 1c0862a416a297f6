package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPage_SkipsEmptyText(t *testing.T) {
	_, ok := BuildPage(3, "")
	assert.False(t, ok)

	_, ok = BuildPage(3, " \n\t  ")
	assert.False(t, ok)
}

func TestBuildPage_KeepsRawText(t *testing.T) {
	p, ok := BuildPage(7, "  Welcome to the manual.\n")
	require.True(t, ok)

	assert.Equal(t, 7, p.Number)
	// Untrimmed so the chunker sees the page as extracted.
	assert.Equal(t, "  Welcome to the manual.\n", p.Text)
}

func TestReadPages_MissingFileIsFatal(t *testing.T) {
	r := NewReader(nil)

	_, err := r.ReadPages("testdata/does-not-exist.pdf", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ERR_201")
}
