package rfc9111

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// §  1.2.  Syntax Notation
// §
// §     This specification uses the Augmented Backus-Naur Form (ABNF)
// §     notation of [RFC5234], extended with the notation for case-
// §     sensitivity in strings defined in [RFC7405].
// §
// §     [HTTP] defines the following rules:
// §
// §       HTTP-date     = <HTTP-date, see [HTTP], Section 5.6.7>
// §       OWS           = <OWS, see [HTTP], Section 5.6.3>
// §       field-name    = <field-name, see [HTTP], Section 5.1>
// §       quoted-string = <quoted-string, see [HTTP], Section 5.6.4>
// §       token         = <token, see [HTTP], Section 5.6.2>

// §  1.2.2. Delta Seconds
// §
// §  The delta-seconds rule specifies a non-negative integer, representing time
// §  in seconds.
// §
// §      delta-seconds  = 1*DIGIT
// §
// §  [...] If a cache receives a delta-seconds value greater than the greatest
// §  integer it can represent, or if any of its subsequent calculations overflows,
// §  the cache MUST consider the value to be 2147483648 (2^31) or the greatest
// §  positive integer it can conveniently represent.
const maxDeltaSeconds int64 = 1 << 31

// parseDeltaSeconds parses a delta-seconds string.
// Values too large for an int64 are reported as maxDeltaSeconds.
func parseDeltaSeconds(secondsStr string) (int64, bool) {
	if !isDigits(secondsStr) {
		return 0, false
	}
	seconds, err := strconv.ParseInt(secondsStr, 10, 64)
	if err != nil {
		// only a range error is possible after the digit check
		return maxDeltaSeconds, true
	}
	return seconds, true
}

// deltaSeconds converts a number of seconds to a duration,
// clamping it so that it never overflows.
func deltaSeconds(seconds int64) time.Duration {
	if seconds > maxDeltaSeconds {
		seconds = maxDeltaSeconds
	}
	return time.Duration(seconds) * time.Second
}

// toDeltaSeconds returns the whole seconds of a duration. Fractions are truncated.
func toDeltaSeconds(duration time.Duration) int64 {
	return int64(duration / time.Second)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// This section is from the HTTP specification (RFC9110), not the cache specification
//
// §  5.6.2.  Tokens
// §
// §     Tokens are short textual identifiers that do not include whitespace
// §     or delimiters.
// §
// §       token          = 1*tchar
// §
// §       tchar          = "!" / "#" / "$" / "%" / "&" / "'" / "*"
// §                      / "+" / "-" / "." / "^" / "_" / "`" / "|" / "~"
// §                      / DIGIT / ALPHA
// §                      ; any VCHAR, except delimiters
func isTokenChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	return strings.IndexByte("!#$%&'*+-.^_`|~", c) >= 0
}

func isToken(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isTokenChar(s[i]) {
			return false
		}
	}
	return true
}

func areTokens(s []string) bool {
	for _, t := range s {
		if !isToken(t) {
			return false
		}
	}
	return true
}

// hasControlChar reports whether s contains a byte that is neither HTAB,
// SP, VCHAR nor obs-text.
func hasControlChar(s string) bool {
	for i := 0; i < len(s); i++ {
		if c := s[i]; (c < 0x20 && c != '\t') || c == 0x7f {
			return true
		}
	}
	return false
}

// §  5.6.4.  Quoted Strings
// §
// §     A string of text is parsed as a single value if it is quoted using
// §     double-quote marks.
// §
// §       quoted-string  = DQUOTE *( qdtext / quoted-pair ) DQUOTE
// §
// §     The backslash octet ("\") can be used as a single-octet quoting
// §     mechanism within quoted-string and comment constructs.
// §
// §       quoted-pair    = "\" ( HTAB / SP / VCHAR / obs-text )
func quoteString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		if s[i] == '"' || s[i] == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	b.WriteByte('"')
	return b.String()
}

// tokenOrQuotedString returns s unchanged if it is a token,
// and in quoted-string form otherwise (including the empty string).
func tokenOrQuotedString(s string) string {
	if isToken(s) {
		return s
	}
	return quoteString(s)
}

// unquoteString converts a quoted-string to its text. Input that is not
// quoted is returned as is. An unterminated quoted-string is read to its end.
func unquoteString(s string) string {
	if len(s) == 0 || s[0] != '"' {
		return s
	}
	var b strings.Builder
	for i := 1; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			if i+1 < len(s) {
				i++
				b.WriteByte(s[i])
			}
		case '"':
			return b.String()
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// §  5.6.7.  Date/Time Formats
// §
// §     A recipient that parses a timestamp value in an HTTP field MUST
// §     accept all three HTTP-date formats.
// §
// §     HTTP-date is case sensitive.  Note that Section 4.2 of [CACHING]
// §     relaxes this for cache recipients.
func httpDate(dateStr string) (time.Time, error) {
	date, err := http.ParseTime(dateStr)
	if err == nil {
		return date, nil
	}
	// retry with the zone name in canonical case, e.g. "gmt" -> "GMT"
	if i := strings.LastIndexByte(dateStr, ' '); i >= 0 {
		if normalized, err := http.ParseTime(dateStr[:i+1] + strings.ToUpper(dateStr[i+1:])); err == nil {
			return normalized, nil
		}
	}
	return time.Time{}, err
}
