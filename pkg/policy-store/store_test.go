package policystore

import (
	"path/filepath"
	"testing"

	"github.com/always-cache/cachecontrol/rfc9111"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func testProvider(t *testing.T, p PolicyProvider) {
	policy, err := p.Put("/static/", "Public, MAX-AGE=600, immutable")
	require.NoError(t, err)
	require.Equal(t, "public, max-age=600, immutable", policy.CacheControl)

	_, err = p.Put("/api/", "no-store")
	require.NoError(t, err)

	got, ok, err := p.Get("/static/")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "public, max-age=600, immutable", got.CacheControl)

	_, ok, err = p.Get("/missing/")
	require.NoError(t, err)
	require.False(t, ok)

	all, err := p.All()
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "/api/", all[0].Prefix)
	require.Equal(t, "/static/", all[1].Prefix)

	require.NoError(t, p.Purge("/api/"))
	all, err = p.All()
	require.NoError(t, err)
	require.Len(t, all, 1)

	_, err = p.Put("/bad/", "max-age=soon")
	require.True(t, errors.Is(err, rfc9111.ErrInvalidArgument))
	_, ok, err = p.Get("/bad/")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemStore(t *testing.T) {
	testProvider(t, NewMemStore())
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "policies.db"))
	require.NoError(t, err)
	defer store.Close()
	testProvider(t, store)
}

func TestCanonicalize(t *testing.T) {
	canonical, err := Canonicalize(`private=Set-Cookie,no-cache`)
	require.NoError(t, err)
	require.Equal(t, `private="Set-Cookie", no-cache`, canonical)

	_, err = Canonicalize("no-store=1")
	require.Error(t, err)
}
