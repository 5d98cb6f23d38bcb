package rfc9111

import "strings"

// ParseCacheControl takes Cache-Control headers as a slice of strings
// and returns the directives in order of appearance.
//
// Directive names are normalized to lower case. An unquoted numeric argument
// of a delta-seconds directive becomes an int value, any other argument a
// token with quoting removed.
// A directive that appears more than once keeps its first position and its
// last value.
func ParseCacheControl(headers []string) []Pair {
	pairs := make([]Pair, 0)
	index := make(map[string]int)
	// process all headers
	for _, header := range headers {
		// process directives "#" means comma-separated list
		for _, member := range splitList(header) {
			name, value, ok := parseDirective(member)
			if !ok {
				continue
			}
			if i, seen := index[name]; seen {
				pairs[i].Value = value
				continue
			}
			index[name] = len(pairs)
			pairs = append(pairs, Pair{Name: name, Value: value})
		}
	}
	return pairs
}

// ParseRequest parses the Cache-Control headers of a request.
func ParseRequest(headers []string) *RequestDirectives {
	return NewRequestDirectives(ParseCacheControl(headers))
}

// ParseResponse parses the Cache-Control headers of a response.
// The observer may be nil.
func ParseResponse(headers []string, observer Observer) *ResponseDirectives {
	return NewResponseDirectives(ParseCacheControl(headers), observer)
}

// parseDirective parses a single cache-directive.
//
// §    cache-directive = token [ "=" ( token / quoted-string ) ]
func parseDirective(member string) (string, Value, bool) {
	rawName, arg, hasArg := strings.Cut(member, "=")
	name := normalizeDirectiveName(rawName)
	if name == "" {
		return "", Value{}, false
	}
	if !hasArg {
		return name, FlagValue(), true
	}
	arg = strings.TrimSpace(arg)
	if strings.HasPrefix(arg, `"`) {
		// §  [...] argument that can use both token and quoted-string syntax. [...]
		return name, TokenValue(unquoteString(arg)), true
	}
	// only known delta-seconds directives are numbers; extension arguments
	// such as "007" keep their text
	if typ := argTypeOf(name); typ == deltaArg || typ == staleArg {
		if n, ok := parseDeltaSeconds(arg); ok {
			return name, IntValue(n), true
		}
	}
	return name, TokenValue(arg), true
}

// splitList splits a #list on commas that are not inside a quoted-string,
// trimming optional whitespace and dropping empty elements.
//
// §  A recipient MUST accept empty list elements [...]
func splitList(header string) []string {
	var (
		members []string
		start   int
		quoted  bool
		escaped bool
	)
	add := func(s string) {
		if s = strings.Trim(s, " \t"); s != "" {
			members = append(members, s)
		}
	}
	for i := 0; i < len(header); i++ {
		c := header[i]
		switch {
		case escaped:
			escaped = false
		case quoted && c == '\\':
			escaped = true
		case c == '"':
			quoted = !quoted
		case c == ',' && !quoted:
			add(header[start:i])
			start = i + 1
		}
	}
	add(header[start:])
	return members
}
