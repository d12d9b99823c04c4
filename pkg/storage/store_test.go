package storage

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSession = "6f1c8c52-4d1e-4a55-9a0e-6a4f0c3e2b11"

func backends(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	bolt, err := NewBoltStore(filepath.Join(dir, "bolt", "kv.db"))
	require.NoError(t, err)
	sqlite, err := NewSQLiteStore(filepath.Join(dir, "sqlite", "kv.db"))
	require.NoError(t, err)

	stores := map[string]Store{
		"memory": NewMemoryStore(),
		"bolt":   bolt,
		"sqlite": sqlite,
	}
	t.Cleanup(func() {
		for _, s := range stores {
			s.Close()
		}
	})
	return stores
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := s.Get(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Set(ctx, "k", []byte(`"v1"`)))
			require.NoError(t, s.Set(ctx, "k", []byte(`"v2"`)))

			got, ok, err := s.Get(ctx, "k")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, `"v2"`, string(got))

			require.NoError(t, s.Delete(ctx, "k"))
			require.NoError(t, s.Delete(ctx, "k"), "delete is idempotent")

			_, ok, err = s.Get(ctx, "k")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var names []string
	ok, err := GetJSON(ctx, s, KeyDemoUsers, &names)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, SetJSON(ctx, s, KeyDemoUsers, []string{"ana", "bo"}))
	ok, err = GetJSON(ctx, s, KeyDemoUsers, &names)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"ana", "bo"}, names)

	require.NoError(t, s.Set(ctx, SessionKey(testSession), []byte("{not json")))
	var session string
	_, err = GetJSON(ctx, s, SessionKey(testSession), &session)
	assert.Error(t, err)
}

func TestBoltStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.db")

	s, err := NewBoltStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, SessionKey(testSession), []byte(`"ana@x.com"`)))
	require.NoError(t, s.Close())

	s, err = NewBoltStore(path)
	require.NoError(t, err)
	defer s.Close()

	got, ok, err := s.Get(ctx, SessionKey(testSession))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `"ana@x.com"`, string(got))
}

func TestSQLiteStoreCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "kv.db")

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open("redis", "")
	assert.True(t, errors.Is(err, ErrUnknownBackend))

	s, err := Open("memory", "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)
}

func TestMemoryStoreHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewMemoryStore().Set(ctx, "k", []byte("1"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFailedWritesAreLogged(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	dir := t.TempDir()
	bolt, err := NewBoltStore(filepath.Join(dir, "bolt.db"))
	require.NoError(t, err)
	sqlite, err := NewSQLiteStore(filepath.Join(dir, "sqlite.db"))
	require.NoError(t, err)

	ctx := context.Background()
	for name, s := range map[string]Store{"bolt": bolt, "sqlite": sqlite} {
		t.Run(name, func(t *testing.T) {
			buf.Reset()
			require.NoError(t, s.Close())

			assert.Error(t, s.Set(ctx, KeyDemoUsers, []byte("[]")))
			assert.Contains(t, buf.String(), name+" write failed")
			assert.Contains(t, buf.String(), "backend="+name)
			assert.Contains(t, buf.String(), "key="+KeyDemoUsers)

			assert.Error(t, s.Delete(ctx, KeyDemoUsers))
			assert.Contains(t, buf.String(), name+" delete failed")
		})
	}
}
