package cache

import (
	"context"
	"path/filepath"
	"supply-chain-optimizer/internal/adapters/repositories"
	"supply-chain-optimizer/internal/platform/db"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newSQLiteTestCache(t *testing.T, ttl time.Duration) *SQLiteSolutionCache {
	t.Helper()
	conn, err := db.OpenSQLite(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, repositories.InitSQLiteSchema(conn))
	return NewSQLiteSolutionCache(conn, ttl)
}

func TestSQLiteSolutionCache_MissThenHit(t *testing.T) {
	c := newSQLiteTestCache(t, time.Hour)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "abc")
	require.NoError(t, err)
	require.False(t, ok)

	want := sampleResult()
	require.NoError(t, c.Put(ctx, "abc", want))

	got, ok, err := c.Get(ctx, "abc")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, want, got)
}

func TestSQLiteSolutionCache_PutOverwrites(t *testing.T) {
	c := newSQLiteTestCache(t, 0)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "abc", sampleResult()))
	second := sampleResult()
	second.Facility = "S1"
	require.NoError(t, c.Put(ctx, "abc", second))

	got, ok, err := c.Get(ctx, "abc")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "S1", got.Facility)
}

func TestSQLiteSolutionCache_Expires(t *testing.T) {
	c := newSQLiteTestCache(t, time.Minute)
	ctx := context.Background()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	require.NoError(t, c.Put(ctx, "abc", sampleResult()))

	now = now.Add(30 * time.Second)
	_, ok, err := c.Get(ctx, "abc")
	require.NoError(t, err)
	require.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok, err = c.Get(ctx, "abc")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSQLiteSolutionCache_Validation(t *testing.T) {
	c := newSQLiteTestCache(t, time.Hour)
	ctx := context.Background()

	_, _, err := c.Get(ctx, "")
	require.Error(t, err)
	require.Error(t, c.Put(ctx, "abc", nil))

	nilDB := NewSQLiteSolutionCache(nil, 0)
	_, _, err = nilDB.Get(ctx, "abc")
	require.ErrorContains(t, err, "db is nil")
}
