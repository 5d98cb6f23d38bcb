// Package rfc9111 models the HTTP Cache-Control header field (RFC 9111,
// section 5.2) as typed directive sets.
//
// Directives received with a request are read-only (RequestDirectives).
// Directives of a response under construction are mutable
// (ResponseDirectives) and notify an Observer after each change, so that the
// owner of the header can re-serialize it with ToHeader.
//
// Set converts values as follows. A nil value or false deletes the directive
// and true sets it without argument (except for delta-seconds directives,
// which require a number). Integers and time.Duration values are stored as
// numbers, where delta-seconds directives reject negative values and
// presence-only directives reject numbers altogether. Strings are parsed as
// numbers for delta-seconds directives and stored as text for field-list and
// extension directives. A []string is joined into a field list. Text with
// control characters other than HTAB is rejected.
package rfc9111

import (
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
)

// ErrImmutable is returned when writing to request directives.
var ErrImmutable = errors.New("cache-control directives are immutable")

// ErrInvalidArgument is returned when a value does not suit a directive.
var ErrInvalidArgument = errors.New("invalid cache-control directive argument")

// MustNotStore returns a boolean indicating if a particular origin response
// MUST NOT be stored in the cache.
//
// The response may be a "real" response from e.g. HttpClient.Do(), OR a Response
// struct with the following fields set:
//
// - Header
// - StatusCode
// - Request with at least .Method set
//
// All of the above are strictly needed as defined by the standard.
// An error will be returned if any of these fields are not present.
func MustNotStore(originResponse *http.Response, shared bool) (bool, error) {
	if originResponse.Header == nil {
		return true, errors.New("response headers empty")
	}
	if originResponse.StatusCode == 0 {
		return true, errors.New("response status code empty")
	}
	if originResponse.Request == nil {
		return true, errors.New("response request object empty")
	}
	if originResponse.Request.Method == "" {
		return true, errors.New("response request method empty")
	}
	return mustNotStore(originResponse.Request, originResponse, shared), nil
}

// FreshnessLifetime returns how long a response is fresh after it was generated.
// Zero means there is no explicit lifetime.
func FreshnessLifetime(res *http.Response, shared bool) time.Duration {
	if res.Header == nil {
		return 0
	}
	return freshnessLifetime(res, shared)
}
