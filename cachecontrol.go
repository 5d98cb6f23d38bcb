package cachecontrol

import (
	"context"
	"net/http"

	ccheader "github.com/always-cache/cachecontrol/pkg/cache-control-header"
	directivecache "github.com/always-cache/cachecontrol/pkg/directive-cache"
	policystore "github.com/always-cache/cachecontrol/pkg/policy-store"
	transformer "github.com/always-cache/cachecontrol/pkg/response-transformer"
	"github.com/always-cache/cachecontrol/rfc9111"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	// Rules applied to the Cache-Control header of successful responses
	// before they are sent.
	Rules transformer.Rules
	// Optional policy store. Its policies are loaded once, in New, and are
	// tried after Rules.
	Policies policystore.PolicyProvider
	// Number of distinct request Cache-Control headers to keep parsed.
	// Zero uses directivecache.DefaultSize.
	RequestCacheSize int
	// Logger to use. The global zerolog logger is used if nil.
	Logger *zerolog.Logger
}

type CacheControl struct {
	rules    transformer.Rules
	requests *directivecache.RequestCache
	log      zerolog.Logger
}

type contextKey int

const (
	requestDirectivesKey contextKey = iota
	responseDirectivesKey
)

// New creates the middleware from config.
func New(config Config) (*CacheControl, error) {
	logger := log.Logger
	if config.Logger != nil {
		logger = *config.Logger
	}
	logger = logger.With().Str("component", "cachecontrol").Logger()

	if err := config.Rules.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid rules")
	}
	rules := append(transformer.Rules(nil), config.Rules...)
	if config.Policies != nil {
		policies, err := config.Policies.All()
		if err != nil {
			return nil, errors.Wrap(err, "loading policies")
		}
		rules = append(rules, transformer.RulesFromPolicies(policies)...)
		logger.Debug().Int("policies", len(policies)).Msg("Loaded stored policies")
	}

	requests, err := directivecache.New(config.RequestCacheSize)
	if err != nil {
		return nil, err
	}
	return &CacheControl{rules: rules, requests: requests, log: logger}, nil
}

// Middleware makes the request and response directives available to next
// through RequestDirectives and ResponseDirectives, and applies the rules
// to the response before its header is written.
func (c *CacheControl) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := c.log.With().Str("method", r.Method).Str("path", r.URL.Path).Logger()

		reqDirectives := ccheader.Request(r, c.requests)
		if reqDirectives.Provided() {
			logger.Trace().Str("cacheControl", reqDirectives.ToHeader()).Msg("Request directives")
		}
		if reqDirectives.OnlyIfCached() {
			logger.Debug().Msg("Client asked for only-if-cached; there is no cache here, passing on")
		}

		rw := &responseWriter{
			ResponseWriter: w,
			req:            r,
			rules:          c.rules,
			log:            logger,
		}
		rw.directives = ccheader.Bind(w.Header(), &rw.log)

		ctx := context.WithValue(r.Context(), requestDirectivesKey, reqDirectives)
		ctx = context.WithValue(ctx, responseDirectivesKey, rw)
		next.ServeHTTP(rw, r.WithContext(ctx))
	})
}

// RequestDirectives returns the Cache-Control directives the client sent.
// Outside of the middleware the request header is parsed on each call.
func RequestDirectives(r *http.Request) *rfc9111.RequestDirectives {
	if d, ok := r.Context().Value(requestDirectivesKey).(*rfc9111.RequestDirectives); ok {
		return d
	}
	return ccheader.Request(r, nil)
}

// ResponseDirectives returns the directives of the response being written.
// Changes are written to the response header right away. It returns nil
// outside of the middleware.
//
// Every call returns the same directives. If the handler writes the
// Cache-Control header itself, the directives follow the new header on the
// next call to ResponseDirectives; changes made through them before that
// call overwrite the header with their own contents.
func ResponseDirectives(r *http.Request) *rfc9111.ResponseDirectives {
	if rw, ok := r.Context().Value(responseDirectivesKey).(*responseWriter); ok {
		return rw.responseDirectives()
	}
	return nil
}
