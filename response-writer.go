package cachecontrol

import (
	"net/http"
	"strings"

	transformer "github.com/always-cache/cachecontrol/pkg/response-transformer"
	"github.com/always-cache/cachecontrol/rfc9111"

	"github.com/rs/zerolog"
)

// responseWriter applies the rules when the header is written.
type responseWriter struct {
	http.ResponseWriter
	req          *http.Request
	rules        transformer.Rules
	directives   *rfc9111.ResponseDirectives
	wroteHeaders bool
	log          zerolog.Logger
}

// responseDirectives returns directives bound to the response header.
// If the handler changed the header directly, the same directives are
// reset from it, so that earlier references stay in step.
func (w *responseWriter) responseDirectives() *rfc9111.ResponseDirectives {
	values := w.Header().Values("Cache-Control")
	if strings.Join(values, ", ") != w.directives.ToHeader() {
		w.log.Trace().Strs("cacheControl", values).Msg("Cache-Control header changed by handler")
		w.directives.Reset(rfc9111.ParseCacheControl(values))
	}
	return w.directives
}

// Implementation of http.ResponseWriter
func (w *responseWriter) WriteHeader(statusCode int) {
	if !w.wroteHeaders {
		// remember that we wrote the headers
		w.wroteHeaders = true
		// keep what the handler set, the rules change the header in place
		handlerSet := w.responseDirectives().Clone()
		res := &http.Response{StatusCode: statusCode, Header: w.Header(), Request: w.req}
		if err := w.rules.Apply(res); err != nil {
			w.log.Error().Err(err).Msg("Could not apply Cache-Control rules")
		}
		if applied := w.responseDirectives().ToHeader(); applied != handlerSet.ToHeader() {
			w.log.Debug().Str("handler", handlerSet.String()).Str("cacheControl", applied).Msg("Cache-Control rewritten by rule")
		}
		w.log.Trace().Int("status", statusCode).Str("cacheControl", w.Header().Get("Cache-Control")).Msg("Writing response")
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

// Implementation of http.ResponseWriter
func (w *responseWriter) Write(b []byte) (int, error) {
	// write headers if not already written
	if !w.wroteHeaders {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
