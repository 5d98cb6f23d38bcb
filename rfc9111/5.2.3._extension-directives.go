package rfc9111

import "time"

// §  5.2.3.  Cache Control Extensions
// §
// §     The Cache-Control header field can be extended through the use of one
// §     or more extension cache directives.  A cache MUST be able to parse
// §     the extension directives and MUST ignore extension directives that it
// §     does not understand.
//
// Unknown extensions are kept as given and can be read and written with
// Get and Set. The RFC 5861 directives get typed accessors.

// StaleWhileRevalidate returns the stale-while-revalidate window.
//
// From RFC 5861: when present in a response, it indicates that caches MAY
// serve the response in which it appears after it becomes stale, up to the
// indicated number of seconds.
func (r *ResponseDirectives) StaleWhileRevalidate() (time.Duration, bool) {
	return r.lookupDelta(DirectiveStaleWhileRevalidate)
}

func (r *ResponseDirectives) SetStaleWhileRevalidate(window time.Duration) error {
	return r.setDelta(DirectiveStaleWhileRevalidate, window)
}

func (r *ResponseDirectives) DeleteStaleWhileRevalidate() {
	r.remove(DirectiveStaleWhileRevalidate)
}

// StaleIfError returns the window in which a stale response may be used
// when an error is encountered.
func (r *ResponseDirectives) StaleIfError() (time.Duration, bool) {
	return r.lookupDelta(DirectiveStaleIfError)
}

func (r *ResponseDirectives) SetStaleIfError(window time.Duration) error {
	return r.setDelta(DirectiveStaleIfError, window)
}

func (r *ResponseDirectives) DeleteStaleIfError() {
	r.remove(DirectiveStaleIfError)
}
