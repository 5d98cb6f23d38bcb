package rfc9111

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
)

// §  5.2.1. Request Directives
// §  This section defines cache request directives. They are advisory; caches
// §  MAY implement them, but are not required to.

// RequestDirectives are the Cache-Control directives of a received request.
// They reflect what the client sent and cannot be changed: every generic
// write operation fails with ErrImmutable, and no typed setters exist.
//
// RequestDirectives are safe for concurrent reads.
type RequestDirectives struct {
	view
}

var _ DirectiveSet = (*RequestDirectives)(nil)

// NewRequestDirectives creates request directives from parsed pairs.
// This is the only time they are written.
func NewRequestDirectives(pairs []Pair) *RequestDirectives {
	return &RequestDirectives{view: newView(pairs)}
}

func immutable(op, name string) error {
	return errors.Wrapf(ErrImmutable, "cannot %s %q on request directives", op, name)
}

func (r *RequestDirectives) Set(name string, _ interface{}) error {
	return immutable("set", name)
}

func (r *RequestDirectives) Delete(name string) error {
	return immutable("delete", name)
}

func (r *RequestDirectives) Clear() error {
	return immutable("clear", "*")
}

func (r *RequestDirectives) Update(pairs ...Pair) error {
	if len(pairs) == 0 {
		return immutable("update", "")
	}
	return immutable("update", pairs[0].Name)
}

// Staleness is the argument of max-stale. Unbounded means the client accepts
// a stale response of any age; otherwise Limit is the accepted staleness.
type Staleness struct {
	Unbounded bool
	Limit     time.Duration
}

func (s Staleness) String() string {
	if s.Unbounded {
		return "*"
	}
	return fmt.Sprintf("%d", toDeltaSeconds(s.Limit))
}

// MaxStale returns the max-stale directive.
//
// §  5.2.1.2.  max-stale
// §
// §     Argument syntax:
// §
// §        delta-seconds (see Section 1.2.2)
// §
// §     The max-stale request directive indicates that the client will accept
// §     a response that has exceeded its freshness lifetime.  If a value is
// §     present, then the client is willing to accept a response that has
// §     exceeded its freshness lifetime by no more than the specified number
// §     of seconds.  If no value is assigned to max-stale, then the client
// §     will accept a stale response of any age.
func (r *RequestDirectives) MaxStale() (Staleness, bool) {
	val, ok := r.entries.get(DirectiveMaxStale)
	if !ok {
		return Staleness{}, false
	}
	if val.IsFlag() || val.String() == "*" {
		return Staleness{Unbounded: true}, true
	}
	n, ok := val.Int()
	if !ok {
		// an argument we cannot read is no bound either
		return Staleness{Unbounded: true}, true
	}
	return Staleness{Limit: deltaSeconds(n)}, true
}

// MinFresh returns the min-fresh directive.
//
// §  5.2.1.3.  min-fresh
// §
// §     The min-fresh request directive indicates that the client prefers a
// §     response whose freshness lifetime is no less than its current age
// §     plus the specified time in seconds.
func (r *RequestDirectives) MinFresh() (time.Duration, bool) {
	return r.lookupDelta(DirectiveMinFresh)
}

// OnlyIfCached returns whether only-if-cached is present.
//
// §  5.2.1.7.  only-if-cached
// §
// §     The only-if-cached request directive indicates that the client only
// §     wishes to obtain a stored response.
func (r *RequestDirectives) OnlyIfCached() bool {
	return r.lookupFlag(DirectiveOnlyIfCached)
}

// StaleIfError returns the RFC 5861 stale-if-error directive.
func (r *RequestDirectives) StaleIfError() (time.Duration, bool) {
	return r.lookupDelta(DirectiveStaleIfError)
}

func (r *RequestDirectives) String() string {
	return fmt.Sprintf("<RequestDirectives %q>", r.ToHeader())
}
