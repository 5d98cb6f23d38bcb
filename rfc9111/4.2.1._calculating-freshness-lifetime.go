package rfc9111

import (
	"net/http"
	"time"
)

func freshnessLifetime(res *http.Response, shared bool) time.Duration {
	directives := ParseResponse(res.Header.Values("Cache-Control"), nil)
	// §     A cache can calculate the freshness lifetime (denoted as
	// §     freshness_lifetime) of a response by evaluating the following rules
	// §     and using the first match:
	// §
	// §     *  If the cache is shared and the s-maxage response directive
	// §        (Section 5.2.2.10) is present, use its value, or
	if val, ok := directives.SMaxAge(); shared && ok {
		return val
	}
	// §
	// §     *  If the max-age response directive (Section 5.2.2.1) is present,
	// §        use its value, or
	if val, ok := directives.MaxAge(); ok {
		return val
	}
	// §
	// §     *  If the Expires response header field (Section 5.3) is present, use
	// §        its value minus the value of the Date response header field (using
	// §        the time the message was received if it is not present, as per
	// §        Section 6.6.1 of [HTTP]), or
	if expires, ok := getExpires(res); ok {
		date, err := httpDate(res.Header.Get("Date"))
		if err != nil {
			date = time.Now()
		}
		if lifetime := expires.Sub(date); lifetime > 0 {
			return lifetime
		}
		return 0
	}
	// §
	// §     *  Otherwise, no explicit expiration time is present in the response.
	// §        A heuristic freshness lifetime might be applicable; see
	// §        Section 4.2.2.
	return 0
}

// §  5.3.  Expires
// §
// §     A cache recipient MUST interpret invalid date formats, especially the
// §     value "0", as representing a time in the past (i.e., "already
// §     expired").
func getExpires(res *http.Response) (time.Time, bool) {
	value := res.Header.Get("Expires")
	if value == "" {
		return time.Time{}, false
	}
	if exp, err := httpDate(value); err == nil {
		return exp, true
	}
	return time.Unix(0, 0), true
}
