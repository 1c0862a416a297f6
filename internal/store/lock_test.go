package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "github.com/nextgenai/docindex/internal/errors"
)

func TestRunLock_AcquireAndRelease(t *testing.T) {
	lock, err := NewRunLock("docs-test-acquire")
	require.NoError(t, err)

	require.NoError(t, lock.Acquire())
	require.NoError(t, lock.Release())
}

func TestRunLock_ContentionFailsFast(t *testing.T) {
	first, err := NewRunLock("docs-test-contention")
	require.NoError(t, err)
	require.NoError(t, first.Acquire())
	defer func() { _ = first.Release() }()

	second, err := NewRunLock("docs-test-contention")
	require.NoError(t, err)

	err = second.Acquire()
	require.Error(t, err)
	assert.Equal(t, derrors.ErrCodeRunLockHeld, derrors.CodeOf(err))
}

func TestRunLock_SeparateIndexesDoNotContend(t *testing.T) {
	first, err := NewRunLock("docs-test-a")
	require.NoError(t, err)
	require.NoError(t, first.Acquire())
	defer func() { _ = first.Release() }()

	second, err := NewRunLock("docs-test-b")
	require.NoError(t, err)
	require.NoError(t, second.Acquire())
	require.NoError(t, second.Release())
}

func TestRunLock_ReleaseWithoutAcquire(t *testing.T) {
	lock, err := NewRunLock("docs-test-release")
	require.NoError(t, err)
	assert.NoError(t, lock.Release())
}

func TestRunLock_SanitizesIndexName(t *testing.T) {
	lock, err := NewRunLock("my index/with:odd chars")
	require.NoError(t, err)
	assert.NotContains(t, lock.Path(), "/with")
	assert.NotContains(t, lock.Path(), ":")
}
