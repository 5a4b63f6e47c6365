package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_MissingFileIsEmpty(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "nested", "prefs.yaml"))

	v, ok, err := s.Get(LanguageKey)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, v)
}

func TestFileStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prefs.yaml")

	require.NoError(t, NewFileStore(path).Set(LanguageKey, "hi"))

	reopened := NewFileStore(path)
	v, ok, err := reopened.Get(LanguageKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "hi", v)

	require.NoError(t, reopened.Set(LanguageKey, "te"))
	require.NoError(t, reopened.Set("theme", "dark"))

	v, _, err = NewFileStore(path).Get(LanguageKey)
	require.NoError(t, err)
	assert.Equal(t, "te", v)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "language: te")
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("language: [unterminated"), 0o644))

	_, _, err := NewFileStore(path).Get(LanguageKey)
	assert.Error(t, err)
}

func TestMemoryStore(t *testing.T) {
	var s Store = NewMemoryStore()
	require.NoError(t, s.Set(LanguageKey, "mr"))
	v, ok, err := s.Get(LanguageKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "mr", v)
}
