package rfc9111

import (
	"fmt"
	"time"
)

// §  5.2.2. Response Directives
// §
// §  This section defines cache response directives. A cache MUST obey the Cache-
// §  Control directives defined in this section.

// ResponseDirectives are the Cache-Control directives of a response being
// constructed. The observer is passed the *ResponseDirectives itself.
type ResponseDirectives struct {
	Directives
}

var _ DirectiveSet = (*ResponseDirectives)(nil)

// NewResponseDirectives creates response directives from parsed pairs.
// The observer (which may be nil) is not called for the initial pairs.
func NewResponseDirectives(pairs []Pair, observer Observer) *ResponseDirectives {
	r := &ResponseDirectives{Directives{view: newView(pairs), observer: observer}}
	r.owner = r
	return r
}

// §  5.2.2.2.  must-revalidate
// §
// §     The must-revalidate response directive indicates that once the
// §     response has become stale, a cache MUST NOT reuse that response to
// §     satisfy another request until it has been successfully validated by
// §     the origin, as defined by Section 4.3.
func (r *ResponseDirectives) MustRevalidate() bool {
	return r.lookupFlag(DirectiveMustRevalidate)
}

func (r *ResponseDirectives) SetMustRevalidate(on bool) {
	r.setFlag(DirectiveMustRevalidate, on)
}

// §  5.2.2.3.  must-understand
// §
// §     The must-understand response directive limits caching of the response
// §     to a cache that understands and conforms to the requirements for that
// §     response's status code.
func (r *ResponseDirectives) MustUnderstand() bool {
	return r.lookupFlag(DirectiveMustUnderstand)
}

func (r *ResponseDirectives) SetMustUnderstand(on bool) {
	r.setFlag(DirectiveMustUnderstand, on)
}

// Private returns the field names of the private directive.
// The unqualified form reads as an empty string.
//
// §  5.2.2.7.  private
// §
// §     The unqualified private response directive indicates that a shared
// §     cache MUST NOT store the response (i.e., the response is intended for
// §     a single user).
// §
// §     If a qualified private response directive is present, with an
// §     argument that lists one or more field names, then only the listed
// §     header fields are limited to a single user [...]
func (r *ResponseDirectives) Private() (string, bool) {
	return r.lookupFields(DirectivePrivate)
}

// SetPrivate sets private. Without field names the unqualified form is set.
// Field names must be tokens.
func (r *ResponseDirectives) SetPrivate(fields ...string) error {
	return r.setFields(DirectivePrivate, fields)
}

func (r *ResponseDirectives) DeletePrivate() {
	r.remove(DirectivePrivate)
}

// §  5.2.2.8.  proxy-revalidate
// §
// §     This is analogous to must-revalidate (Section 5.2.2.2), except that proxy-
// §     revalidate does not apply to private caches.
func (r *ResponseDirectives) ProxyRevalidate() bool {
	return r.lookupFlag(DirectiveProxyRevalidate)
}

func (r *ResponseDirectives) SetProxyRevalidate(on bool) {
	r.setFlag(DirectiveProxyRevalidate, on)
}

// §  5.2.2.9.  public
// §
// §     The public response directive indicates that a cache MAY store the
// §     response even if it would otherwise be prohibited, subject to the
// §     constraints defined in Section 3.
func (r *ResponseDirectives) Public() bool {
	return r.lookupFlag(DirectivePublic)
}

func (r *ResponseDirectives) SetPublic(on bool) {
	r.setFlag(DirectivePublic, on)
}

// SMaxAge returns "s-maxage" as a duration, along with a boolean indicating
// whether the directive was present.
//
// §  5.2.2.10.  s-maxage
// §
// §     The s-maxage response directive indicates that, for a shared cache,
// §     the maximum age specified by this directive overrides the maximum age
// §     specified by either the max-age directive or the Expires header
// §     field.
func (r *ResponseDirectives) SMaxAge() (time.Duration, bool) {
	return r.lookupDelta(DirectiveSMaxAge)
}

func (r *ResponseDirectives) SetSMaxAge(age time.Duration) error {
	return r.setDelta(DirectiveSMaxAge, age)
}

func (r *ResponseDirectives) DeleteSMaxAge() {
	r.remove(DirectiveSMaxAge)
}

// Immutable is the RFC 8246 immutable directive: the response body will not
// change while it is fresh.
func (r *ResponseDirectives) Immutable() bool {
	return r.lookupFlag(DirectiveImmutable)
}

func (r *ResponseDirectives) SetImmutable(on bool) {
	r.setFlag(DirectiveImmutable, on)
}

func (r *ResponseDirectives) String() string {
	return fmt.Sprintf("<ResponseDirectives %q>", r.ToHeader())
}
