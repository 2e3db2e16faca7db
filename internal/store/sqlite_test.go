package store_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Aias00/gold-price-monitor/internal/store"
)

func TestSQLite_RoundTrip(t *testing.T) {
	t.Parallel()

	s, err := store.NewSQLite(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	defer s.Close()

	_, ok, err := s.Get(t.Context(), "gold_price:Au99.99")
	require.NoError(t, err)
	require.False(t, ok)

	payload := []byte(`{"fetchedAt":"2024-01-05T14:30:00Z","sourceKey":"gold_price:Au99.99","data":{"records":[]}}`)
	require.NoError(t, s.Set(t.Context(), "gold_price:Au99.99", payload))

	got, ok, err := s.Get(t.Context(), "gold_price:Au99.99")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, payload, got)
}

func TestSQLite_OverwriteLastWriterWins(t *testing.T) {
	t.Parallel()

	s, err := store.NewSQLite(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set(t.Context(), "k", []byte("old")))
	require.NoError(t, s.Set(t.Context(), "k", []byte("new")))

	got, ok, err := s.Get(t.Context(), "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("new"), got)
}

func TestSQLite_SurvivesReopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "kv.db")

	s, err := store.NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(t.Context(), "k", []byte("v")))
	require.NoError(t, s.Close())

	s, err = store.NewSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	got, ok, err := s.Get(t.Context(), "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v"), got)
}

func TestMemory_GetReturnsCopy(t *testing.T) {
	t.Parallel()

	m := store.NewMemory()
	require.NoError(t, m.Set(t.Context(), "k", []byte("abc")))

	got, ok, err := m.Get(t.Context(), "k")
	require.NoError(t, err)
	require.True(t, ok)

	got[0] = 'x'
	again, _, _ := m.Get(t.Context(), "k")
	require.Equal(t, []byte("abc"), again)
}
