package ccheader

import (
	"net/http"

	directivecache "github.com/always-cache/cachecontrol/pkg/directive-cache"
	"github.com/always-cache/cachecontrol/rfc9111"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const fieldName = "Cache-Control"

// headerSync writes the directives back into a header after each change.
type headerSync struct {
	header http.Header
	log    zerolog.Logger
}

func (s *headerSync) DirectivesUpdated(d rfc9111.DirectiveSet) {
	value := d.ToHeader()
	if value == "" {
		// nothing left to send
		s.header.Del(fieldName)
	} else {
		s.header.Set(fieldName, value)
	}
	s.log.Trace().Str("cacheControl", value).Msg("Cache-Control header updated")
}

// Bind parses the Cache-Control field of h and returns directives that keep
// h up to date: after every change the field is re-serialized, or removed
// once no directive is left. The global zerolog logger is used if logger is nil.
func Bind(h http.Header, logger *zerolog.Logger) *rfc9111.ResponseDirectives {
	if logger == nil {
		logger = &log.Logger
	}
	return rfc9111.ParseResponse(h.Values(fieldName), &headerSync{header: h, log: *logger})
}

// Request returns the directives a client sent with r.
// The cache may be nil.
func Request(r *http.Request, cache *directivecache.RequestCache) *rfc9111.RequestDirectives {
	return cache.Get(r.Header.Values(fieldName))
}
