package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, ttl time.Duration) (*Store, *time.Time) {
	t.Helper()
	s, err := Open(t.TempDir(), ttl)
	require.NoError(t, err)

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	return s, &now
}

func TestEntry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	e := newEntry("k", []byte(`[]`), now, time.Minute)
	assert.False(t, e.ExpiredAt(now.Add(59*time.Second)))
	assert.True(t, e.ExpiredAt(now.Add(61*time.Second)))
	assert.Equal(t, 30*time.Second, e.Age(now.Add(30*time.Second)))

	forever := newEntry("k", []byte(`[]`), now, 0)
	assert.True(t, forever.ExpiresAt.IsZero())
	assert.False(t, forever.ExpiredAt(now.Add(24*365*time.Hour)))
}

func TestKey(t *testing.T) {
	k1, err := Key("environmental", map[string]any{"a": 1, "b": 2})
	require.NoError(t, err)
	k2, err := Key("environmental", map[string]any{"b": 2, "a": 1})
	require.NoError(t, err)
	k3, err := Key("social", map[string]any{"a": 1, "b": 2})
	require.NoError(t, err)

	assert.Len(t, k1, 64)
	assert.Equal(t, k1, k2, "map order does not change the key")
	assert.NotEqual(t, k1, k3, "namespace is part of the key")

	_, err = Key("x", func() {})
	require.Error(t, err)
}

func TestStore_PutGet(t *testing.T) {
	s, _ := newTestStore(t, time.Hour)

	want := []string{"one", "two"}
	require.NoError(t, s.Put("abc", want))

	var got []string
	require.NoError(t, s.Get("abc", &got))
	assert.Equal(t, want, got)

	require.ErrorIs(t, s.Get("missing", &got), ErrNotFound)
	require.ErrorIs(t, s.Get("", &got), ErrInvalidKey)
	require.ErrorIs(t, s.Put("", want), ErrInvalidKey)
}

func TestStore_Expiry(t *testing.T) {
	s, now := newTestStore(t, time.Minute)
	require.NoError(t, s.Put("k", []string{"x"}))

	*now = now.Add(2 * time.Minute)

	var got []string
	require.ErrorIs(t, s.Get("k", &got), ErrExpired)
	require.ErrorIs(t, s.Get("k", &got), ErrNotFound, "expired entry is removed on read")
}

func TestStore_PurgeAndStats(t *testing.T) {
	s, now := newTestStore(t, time.Minute)
	require.NoError(t, s.Put("old", 1))
	*now = now.Add(30 * time.Second)
	require.NoError(t, s.Put("new", 2))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "junk.json"), []byte("not json"), 0600))

	*now = now.Add(45 * time.Second)

	st, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 3, st.Entries)
	assert.Equal(t, 1, st.Expired)
	assert.Positive(t, st.Bytes)

	removed, err := s.Purge()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	var v int
	require.NoError(t, s.Get("new", &v))
	assert.Equal(t, 2, v)
}

func TestStore_DeleteAndClear(t *testing.T) {
	s, _ := newTestStore(t, 0)
	require.NoError(t, s.Put("a", 1))
	require.NoError(t, s.Put("b", 2))

	require.NoError(t, s.Delete("a"))
	require.NoError(t, s.Delete("a"), "delete is idempotent")

	require.NoError(t, s.Clear())
	st, err := s.Stats()
	require.NoError(t, err)
	assert.Zero(t, st.Entries)
}

func TestStore_UnsafeKeyCharacters(t *testing.T) {
	s, _ := newTestStore(t, 0)
	require.NoError(t, s.Put("a/b:c", "v"))

	var got string
	require.NoError(t, s.Get("a/b:c", &got))
	assert.Equal(t, "v", got)
	assert.FileExists(t, filepath.Join(s.Dir(), "a_b_c.json"))
}

func TestStore_NilIsDisabled(t *testing.T) {
	var s *Store
	var v int
	require.ErrorIs(t, s.Get("k", &v), ErrDisabled)
	require.ErrorIs(t, s.Put("k", 1), ErrDisabled)
	require.ErrorIs(t, s.Delete("k"), ErrDisabled)
	require.ErrorIs(t, s.Clear(), ErrDisabled)
	_, err := s.Purge()
	require.ErrorIs(t, err, ErrDisabled)
	_, err = s.Stats()
	require.ErrorIs(t, err, ErrDisabled)
	assert.Empty(t, s.Dir())
}

func TestOpen_Validation(t *testing.T) {
	_, err := Open("", time.Minute)
	require.Error(t, err)

	_, err = Open(t.TempDir(), -time.Second)
	require.Error(t, err)
}
