package directivecache

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGetSharesParsedDirectives(t *testing.T) {
	c, err := New(2)
	require.NoError(t, err)

	first := c.Get([]string{"max-age=0", "no-cache"})
	second := c.Get([]string{"max-age=0, no-cache"})
	require.Same(t, first, second)
	require.Equal(t, 1, c.Len())

	maxAge, ok := first.MaxAge()
	require.True(t, ok)
	require.Equal(t, time.Duration(0), maxAge)
}

func TestGetEvictsLeastRecentlyUsed(t *testing.T) {
	c, err := New(2)
	require.NoError(t, err)

	a := c.Get([]string{"max-age=1"})
	c.Get([]string{"max-age=2"})
	c.Get([]string{"max-age=1"})
	c.Get([]string{"max-age=3"})
	require.Equal(t, 2, c.Len())
	require.Same(t, a, c.Get([]string{"max-age=1"}))
}

func TestGetLongHeaderNotCached(t *testing.T) {
	c, err := New(0)
	require.NoError(t, err)

	long := "x-ext=" + strings.Repeat("a", maxKeyLength)
	d := c.Get([]string{long})
	require.True(t, d.Has("x-ext"))
	require.Equal(t, 0, c.Len())
}

func TestNilCacheParses(t *testing.T) {
	var c *RequestCache
	require.True(t, c.Get([]string{"only-if-cached"}).OnlyIfCached())
}

func TestPurge(t *testing.T) {
	c, err := New(4)
	require.NoError(t, err)
	c.Get([]string{"no-store"})
	c.Purge()
	require.Equal(t, 0, c.Len())
}
