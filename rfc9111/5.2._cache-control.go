package rfc9111

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// §  5.2. Cache-Control
// §
// §  The "Cache-Control" header field is used to list directives for caches along
// §  the request/response chain. Cache directives are unidirectional, in that the
// §  presence of a directive in a request does not imply that the same directive is
// §  present or copied in the response.
// §
// §  [...] Cache directives are identified by a token, to
// §  be compared case-insensitively, and have an optional argument that can use both
// §  token and quoted-string syntax. For the directives defined below that define
// §  arguments, recipients ought to accept both forms, even if a specific form is
// §  required for generation.
// §
// §    Cache-Control   = #cache-directive
// §
// §    cache-directive = token [ "=" ( token / quoted-string ) ]

// Observer is notified after every change to a Directives instance.
// It is passed the container it was given to, so the observer of response
// directives receives a *ResponseDirectives.
type Observer interface {
	DirectivesUpdated(d DirectiveSet)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(d DirectiveSet)

func (f ObserverFunc) DirectivesUpdated(d DirectiveSet) { f(d) }

// Mutator is the set of generic write operations. Only the request
// variant rejects them.
type Mutator interface {
	Set(name string, value interface{}) error
	Delete(name string) error
	Clear() error
	Update(pairs ...Pair) error
}

// DirectiveSet is implemented by both request and response directives.
type DirectiveSet interface {
	Get(name string) (Value, bool)
	Has(name string) bool
	Len() int
	Names() []string
	Each(fn func(name string, value Value) bool)
	Provided() bool
	ToHeader() string
	NoCache() (string, bool)
	NoStore() bool
	MaxAge() (time.Duration, bool)
	NoTransform() bool
	Mutator
}

// directiveMap is a map from directive name to value that remembers insertion order.
// A directive is set if and only if its name is in the map.
type directiveMap struct {
	names  []string
	values map[string]Value
}

func newDirectiveMap(pairs []Pair) directiveMap {
	m := directiveMap{values: make(map[string]Value, len(pairs))}
	for _, p := range pairs {
		if name := normalizeDirectiveName(p.Name); name != "" {
			m.set(name, p.Value)
		}
	}
	return m
}

func (m *directiveMap) get(name string) (Value, bool) {
	v, ok := m.values[name]
	return v, ok
}

// set overwrites in place, so a directive keeps its first position.
func (m *directiveMap) set(name string, v Value) {
	if m.values == nil {
		m.values = make(map[string]Value)
	}
	if _, ok := m.values[name]; !ok {
		m.names = append(m.names, name)
	}
	m.values[name] = v
}

func (m *directiveMap) remove(name string) bool {
	if _, ok := m.values[name]; !ok {
		return false
	}
	delete(m.values, name)
	for i, n := range m.names {
		if n == name {
			m.names = append(m.names[:i], m.names[i+1:]...)
			break
		}
	}
	return true
}

func (m *directiveMap) clear() {
	m.names = nil
	m.values = make(map[string]Value)
}

func (m *directiveMap) clone() directiveMap {
	c := directiveMap{
		names:  append([]string(nil), m.names...),
		values: make(map[string]Value, len(m.values)),
	}
	for k, v := range m.values {
		c.values[k] = v
	}
	return c
}

// view holds the read operations shared by request and response directives.
type view struct {
	entries  directiveMap
	provided bool
}

func newView(pairs []Pair) view {
	entries := newDirectiveMap(pairs)
	return view{entries: entries, provided: len(entries.names) > 0}
}

// Get returns the value of a directive, along with a boolean indicating
// whether the directive is present.
func (v *view) Get(name string) (Value, bool) {
	return v.entries.get(normalizeDirectiveName(name))
}

// Has returns whether the specified directive is present.
func (v *view) Has(name string) bool {
	_, ok := v.Get(name)
	return ok
}

func (v *view) Len() int {
	return len(v.entries.names)
}

// Names returns the directive names in insertion order.
func (v *view) Names() []string {
	return append([]string(nil), v.entries.names...)
}

// Each calls fn for each directive in insertion order until fn returns false.
func (v *view) Each(fn func(name string, value Value) bool) {
	for _, name := range v.entries.names {
		if !fn(name, v.entries.values[name]) {
			return
		}
	}
}

// Provided reports whether any directive was ever given, either at
// construction or by a later change. Clearing all directives keeps it true.
func (v *view) Provided() bool {
	return v.provided
}

// NoCache returns the field names of the no-cache directive.
// The unqualified form reads as an empty string.
func (v *view) NoCache() (string, bool) {
	return v.lookupFields(DirectiveNoCache)
}

func (v *view) NoStore() bool {
	return v.lookupFlag(DirectiveNoStore)
}

// MaxAge returns "max-age" as a duration, along with a boolean indicating
// whether the "max-age" directive was present.
//
// §  This directive uses the token form of the argument syntax: e.g.,
// §  'max-age=5' not 'max-age="5"'. A sender MUST NOT generate the quoted-string form.
func (v *view) MaxAge() (time.Duration, bool) {
	return v.lookupDelta(DirectiveMaxAge)
}

func (v *view) NoTransform() bool {
	return v.lookupFlag(DirectiveNoTransform)
}

// ToHeader serializes the directives into a Cache-Control field value.
func (v *view) ToHeader() string {
	var b strings.Builder
	for i, name := range v.entries.names {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(name)
		val := v.entries.values[name]
		switch val.kind {
		case KindInt:
			b.WriteByte('=')
			b.WriteString(strconv.FormatInt(val.n, 10))
		case KindToken:
			b.WriteByte('=')
			// §  This directive uses the quoted-string form of the argument syntax.  A
			// §  sender SHOULD NOT generate the token form (even if quoting appears
			// §  not to be needed for single-entry lists).
			if argTypeOf(name) == fieldsArg {
				b.WriteString(quoteString(val.s))
			} else {
				b.WriteString(tokenOrQuotedString(val.s))
			}
		}
	}
	return b.String()
}

// Directives is a mutable, ordered set of Cache-Control directives.
// Every successful change notifies the observer given at construction.
//
// Directives is not safe for concurrent use.
type Directives struct {
	view
	observer Observer
	// owner is the outermost container, passed to the observer
	owner DirectiveSet
}

// NewDirectives creates directives from parsed pairs.
// The observer (which may be nil) is not called for the initial pairs.
func NewDirectives(pairs []Pair, observer Observer) *Directives {
	d := &Directives{view: newView(pairs), observer: observer}
	d.owner = d
	return d
}

// Set stores a directive. See the package documentation for how values
// are converted; a nil value or false deletes the directive.
func (d *Directives) Set(name string, value interface{}) error {
	name = normalizeDirectiveName(name)
	if !isToken(name) {
		return errors.Wrapf(ErrInvalidArgument, "invalid directive name %q", name)
	}
	v, remove, err := coerce(name, value)
	if err != nil {
		return err
	}
	if remove {
		d.entries.remove(name)
	} else {
		d.entries.set(name, v)
	}
	d.changed()
	return nil
}

// Delete removes a directive. Deleting an absent directive is not an error.
func (d *Directives) Delete(name string) error {
	d.entries.remove(normalizeDirectiveName(name))
	d.changed()
	return nil
}

// Clear removes all directives.
func (d *Directives) Clear() error {
	d.entries.clear()
	d.changed()
	return nil
}

// Update sets all pairs with a single notification.
// Nothing is applied if any pair is invalid.
func (d *Directives) Update(pairs ...Pair) error {
	names := make([]string, len(pairs))
	values := make([]Value, len(pairs))
	removes := make([]bool, len(pairs))
	for i, p := range pairs {
		name := normalizeDirectiveName(p.Name)
		if !isToken(name) {
			return errors.Wrapf(ErrInvalidArgument, "invalid directive name %q", name)
		}
		v, remove, err := coerce(name, p.Value)
		if err != nil {
			return err
		}
		names[i], values[i], removes[i] = name, v, remove
	}
	for i, name := range names {
		if removes[i] {
			d.entries.remove(name)
		} else {
			d.entries.set(name, values[i])
		}
	}
	d.changed()
	return nil
}

// Reset replaces all directives with pairs the way the constructor reads
// them: nothing is validated and the observer is not called. It is used to
// follow a header that was changed behind the container's back.
func (d *Directives) Reset(pairs []Pair) {
	d.entries = newDirectiveMap(pairs)
	d.provided = d.provided || len(d.entries.names) > 0
}

// Clone returns an independent copy without an observer.
func (d *Directives) Clone() *Directives {
	c := &Directives{view: view{entries: d.entries.clone(), provided: d.provided}}
	c.owner = c
	return c
}

func (d *Directives) changed() {
	d.provided = true
	if d.observer == nil {
		return
	}
	if d.owner != nil {
		d.observer.DirectivesUpdated(d.owner)
	} else {
		d.observer.DirectivesUpdated(d)
	}
}

// put and remove are used by the typed setters, whose values are always valid.
func (d *Directives) put(name string, v Value) {
	d.entries.set(name, v)
	d.changed()
}

func (d *Directives) remove(name string) {
	d.entries.remove(name)
	d.changed()
}

func (d *Directives) setFlag(name string, on bool) {
	if on {
		d.put(name, FlagValue())
	} else {
		d.remove(name)
	}
}

// setFields rejects field names that are not tokens.
func (d *Directives) setFields(name string, fields []string) error {
	if len(fields) == 0 {
		d.put(name, FlagValue())
		return nil
	}
	if !areTokens(fields) {
		return invalidArgument(name, fields)
	}
	d.put(name, TokenValue(strings.Join(fields, ", ")))
	return nil
}

func (d *Directives) setDelta(name string, age time.Duration) error {
	if age < 0 {
		return invalidArgument(name, age)
	}
	d.put(name, IntValue(toDeltaSeconds(age)))
	return nil
}

// SetNoCache sets no-cache. Without field names the unqualified form is set.
// Field names must be tokens.
func (d *Directives) SetNoCache(fields ...string) error {
	return d.setFields(DirectiveNoCache, fields)
}

func (d *Directives) DeleteNoCache() {
	d.remove(DirectiveNoCache)
}

func (d *Directives) SetNoStore(on bool) {
	d.setFlag(DirectiveNoStore, on)
}

// SetMaxAge sets max-age in whole seconds. A negative age is rejected.
func (d *Directives) SetMaxAge(age time.Duration) error {
	return d.setDelta(DirectiveMaxAge, age)
}

func (d *Directives) DeleteMaxAge() {
	d.remove(DirectiveMaxAge)
}

func (d *Directives) SetNoTransform(on bool) {
	d.setFlag(DirectiveNoTransform, on)
}

func (d *Directives) String() string {
	return fmt.Sprintf("<Directives %q>", d.ToHeader())
}
