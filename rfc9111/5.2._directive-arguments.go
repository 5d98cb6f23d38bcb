package rfc9111

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// Names of the directives defined in sections 5.2.1 and 5.2.2,
// and of the RFC 5861 extensions.
const (
	DirectiveMaxAge               = "max-age"
	DirectiveMaxStale             = "max-stale"
	DirectiveMinFresh             = "min-fresh"
	DirectiveNoCache              = "no-cache"
	DirectiveNoStore              = "no-store"
	DirectiveNoTransform          = "no-transform"
	DirectiveOnlyIfCached         = "only-if-cached"
	DirectiveMustRevalidate       = "must-revalidate"
	DirectiveMustUnderstand       = "must-understand"
	DirectivePrivate              = "private"
	DirectiveProxyRevalidate      = "proxy-revalidate"
	DirectivePublic               = "public"
	DirectiveSMaxAge              = "s-maxage"
	DirectiveImmutable            = "immutable"
	DirectiveStaleWhileRevalidate = "stale-while-revalidate"
	DirectiveStaleIfError         = "stale-if-error"
)

// ValueKind tells which shape a directive value has.
type ValueKind int

const (
	// KindFlag is a directive without an argument, e.g. "no-store".
	KindFlag ValueKind = iota
	// KindInt is a numeric argument, e.g. "max-age=600".
	KindInt
	// KindToken is a textual argument, e.g. `private="Set-Cookie"`.
	KindToken
)

func (k ValueKind) String() string {
	switch k {
	case KindFlag:
		return "flag"
	case KindInt:
		return "int"
	case KindToken:
		return "token"
	}
	return "ValueKind(" + strconv.Itoa(int(k)) + ")"
}

// Value is the value of a single directive that is present.
// The zero Value is a bare flag.
type Value struct {
	kind ValueKind
	n    int64
	s    string
}

// FlagValue returns the value of a directive present without argument.
func FlagValue() Value { return Value{kind: KindFlag} }

// IntValue returns a numeric directive value.
func IntValue(n int64) Value { return Value{kind: KindInt, n: n} }

// TokenValue returns a textual directive value.
func TokenValue(s string) Value { return Value{kind: KindToken, s: s} }

func (v Value) Kind() ValueKind { return v.kind }

func (v Value) IsFlag() bool { return v.kind == KindFlag }

// Int returns the value as an integer. A token consisting of digits only
// (e.g. from the quoted form `max-age="5"`) is accepted as well.
func (v Value) Int() (int64, bool) {
	switch v.kind {
	case KindInt:
		return v.n, true
	case KindToken:
		return parseDeltaSeconds(v.s)
	}
	return 0, false
}

// Text returns the argument as text. A flag has no argument.
func (v Value) Text() (string, bool) {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.n, 10), true
	case KindToken:
		return v.s, true
	}
	return "", false
}

// String returns the argument text, or an empty string for a flag.
func (v Value) String() string {
	s, _ := v.Text()
	return s
}

// Pair is a single directive as produced by ParseCacheControl.
type Pair struct {
	Name  string
	Value Value
}

// argType is the argument syntax a directive accepts.
type argType int

const (
	// anyArg is used for extension directives, which are stored as given.
	anyArg argType = iota
	// flagArg directives take no argument.
	flagArg
	// deltaArg directives take delta-seconds.
	deltaArg
	// fieldsArg directives take an optional #field-name list.
	fieldsArg
	// staleArg is max-stale: optional delta-seconds, where absence means any staleness.
	staleArg
)

var directiveArgTypes = map[string]argType{
	DirectiveMaxAge:               deltaArg,
	DirectiveMaxStale:             staleArg,
	DirectiveMinFresh:             deltaArg,
	DirectiveNoCache:              fieldsArg,
	DirectiveNoStore:              flagArg,
	DirectiveNoTransform:          flagArg,
	DirectiveOnlyIfCached:         flagArg,
	DirectiveMustRevalidate:       flagArg,
	DirectiveMustUnderstand:       flagArg,
	DirectivePrivate:              fieldsArg,
	DirectiveProxyRevalidate:      flagArg,
	DirectivePublic:               flagArg,
	DirectiveSMaxAge:              deltaArg,
	DirectiveImmutable:            flagArg,
	DirectiveStaleWhileRevalidate: deltaArg,
	DirectiveStaleIfError:         deltaArg,
}

func argTypeOf(name string) argType {
	return directiveArgTypes[name]
}

// normalizeDirectiveName returns the stored form of a directive name.
//
// §  [...] Cache directives are identified by a token, to
// §  be compared case-insensitively [...]
func normalizeDirectiveName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
}

func invalidArgument(name string, value interface{}) error {
	return errors.Wrapf(ErrInvalidArgument, "directive %q does not accept %T(%v)", name, value, value)
}

// coerce converts a value given to Set into the stored directive value.
// It reports remove if the directive should be deleted instead.
func coerce(name string, value interface{}) (v Value, remove bool, err error) {
	typ := argTypeOf(name)
	switch x := value.(type) {
	case nil:
		return Value{}, true, nil
	case Value:
		return validate(name, typ, x)
	case bool:
		if !x {
			return Value{}, true, nil
		}
		if typ == deltaArg {
			return Value{}, false, invalidArgument(name, value)
		}
		return FlagValue(), false, nil
	case time.Duration:
		if x < 0 {
			return Value{}, false, invalidArgument(name, value)
		}
		return coerceInt(name, typ, toDeltaSeconds(x), value)
	case int:
		return coerceInt(name, typ, int64(x), value)
	case int32:
		return coerceInt(name, typ, int64(x), value)
	case int64:
		return coerceInt(name, typ, x, value)
	case uint:
		return coerceUint(name, typ, uint64(x), value)
	case uint32:
		return coerceInt(name, typ, int64(x), value)
	case uint64:
		return coerceUint(name, typ, x, value)
	case string:
		return coerceText(name, typ, x, value)
	case []string:
		if typ != fieldsArg && typ != anyArg {
			return Value{}, false, invalidArgument(name, value)
		}
		if typ == fieldsArg && !areTokens(x) {
			return Value{}, false, invalidArgument(name, value)
		}
		return coerceText(name, typ, strings.Join(x, ", "), value)
	}
	return Value{}, false, invalidArgument(name, value)
}

func coerceUint(name string, typ argType, n uint64, orig interface{}) (Value, bool, error) {
	if n > math.MaxInt64 {
		return Value{}, false, invalidArgument(name, orig)
	}
	return coerceInt(name, typ, int64(n), orig)
}

func coerceInt(name string, typ argType, n int64, orig interface{}) (Value, bool, error) {
	switch typ {
	case deltaArg, staleArg:
		if n < 0 {
			return Value{}, false, invalidArgument(name, orig)
		}
		return IntValue(n), false, nil
	case anyArg:
		return IntValue(n), false, nil
	}
	return Value{}, false, invalidArgument(name, orig)
}

func coerceText(name string, typ argType, s string, orig interface{}) (Value, bool, error) {
	switch typ {
	case deltaArg:
		if n, ok := parseDeltaSeconds(s); ok {
			return IntValue(n), false, nil
		}
	case staleArg:
		if s == "*" {
			return TokenValue(s), false, nil
		}
		if n, ok := parseDeltaSeconds(s); ok {
			return IntValue(n), false, nil
		}
	case fieldsArg, anyArg:
		// a quoted-string cannot carry control characters
		if !hasControlChar(s) {
			return TokenValue(s), false, nil
		}
	}
	return Value{}, false, invalidArgument(name, orig)
}

// validate checks that an already typed value suits the directive.
func validate(name string, typ argType, v Value) (Value, bool, error) {
	switch v.kind {
	case KindFlag:
		if typ == deltaArg {
			return Value{}, false, invalidArgument(name, v)
		}
		return v, false, nil
	case KindInt:
		return coerceInt(name, typ, v.n, v)
	case KindToken:
		return coerceText(name, typ, v.s, v)
	}
	return Value{}, false, invalidArgument(name, v)
}

// lookupFlag reports whether a presence-only directive is set.
func (v *view) lookupFlag(name string) bool {
	_, ok := v.entries.get(name)
	return ok
}

// lookupDelta returns a delta-seconds argument. A directive that is present
// without a usable number reads as absent.
func (v *view) lookupDelta(name string) (time.Duration, bool) {
	val, ok := v.entries.get(name)
	if !ok {
		return 0, false
	}
	n, ok := val.Int()
	if !ok || n < 0 {
		return 0, false
	}
	return deltaSeconds(n), true
}

// lookupFields returns a #field-name argument. The unqualified form
// reads as the empty string, meaning all fields.
func (v *view) lookupFields(name string) (string, bool) {
	val, ok := v.entries.get(name)
	if !ok {
		return "", false
	}
	fields, _ := val.Text()
	return fields, true
}
