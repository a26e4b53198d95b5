package state

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testState(t *testing.T) *State {
	t.Helper()

	s, err := LoadAt(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

func TestToken_EmptyByDefault(t *testing.T) {
	s := testState(t)
	assert.Empty(t, s.Token())
}

func TestSetToken_RoundTrip(t *testing.T) {
	s := testState(t)

	require.NoError(t, s.SetToken("bearer-abc123"))
	assert.Equal(t, "bearer-abc123", s.Token())

	// Overwrite.
	require.NoError(t, s.SetToken("bearer-def456"))
	assert.Equal(t, "bearer-def456", s.Token())
}

func TestClearToken(t *testing.T) {
	s := testState(t)

	require.NoError(t, s.SetToken("bearer-abc123"))
	require.NoError(t, s.ClearToken())
	assert.Empty(t, s.Token())
}

func TestLoadAt_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "state.db")

	s, err := LoadAt(path)
	require.NoError(t, err)
	defer s.Close()

	assert.FileExists(t, path)
}

func TestLoadAt_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	s, err := LoadAt(path)
	require.NoError(t, err)
	require.NoError(t, s.SetToken("persisted"))
	require.NoError(t, s.Close())

	s2, err := LoadAt(path)
	require.NoError(t, err)
	defer s2.Close()

	assert.Equal(t, "persisted", s2.Token())
}
