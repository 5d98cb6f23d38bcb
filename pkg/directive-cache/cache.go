package directivecache

import (
	"strings"

	"github.com/always-cache/cachecontrol/rfc9111"
	"github.com/cockroachdb/errors"
	"github.com/hashicorp/golang-lru"
)

// DefaultSize is the number of distinct headers kept when no size is given.
const DefaultSize = 512

// headers longer than this are parsed every time instead of being cached
const maxKeyLength = 1024

// RequestCache keeps recently parsed request directives, keyed by the raw
// Cache-Control header. Request directives are immutable, so one instance
// is shared by all requests that sent the same header.
//
// RequestCache is safe for concurrent use.
type RequestCache struct {
	cache *lru.Cache
}

// New returns a cache holding up to size parsed headers.
// A size of zero or less uses DefaultSize.
func New(size int) (*RequestCache, error) {
	if size <= 0 {
		size = DefaultSize
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, errors.Wrapf(err, "creating directive cache of size %d", size)
	}
	return &RequestCache{cache: cache}, nil
}

// Get returns the parsed directives of the given Cache-Control header values.
// A nil cache parses without caching.
func (c *RequestCache) Get(headers []string) *rfc9111.RequestDirectives {
	if c == nil {
		return rfc9111.ParseRequest(headers)
	}
	// several field lines are equivalent to one line joined by commas
	key := strings.Join(headers, ", ")
	if len(key) > maxKeyLength {
		return rfc9111.ParseRequest(headers)
	}
	if obj, ok := c.cache.Get(key); ok {
		return obj.(*rfc9111.RequestDirectives)
	}
	directives := rfc9111.ParseRequest(headers)
	c.cache.Add(key, directives)
	return directives
}

// Len returns the number of cached headers.
func (c *RequestCache) Len() int {
	return c.cache.Len()
}

// Purge empties the cache.
func (c *RequestCache) Purge() {
	c.cache.Purge()
}
