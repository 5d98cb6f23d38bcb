package rfc9111

import "net/http"

// § 3.  Storing Responses in Caches

func mustNotStore(req *http.Request, res *http.Response, shared bool) bool {
	reqDirectives := ParseRequest(req.Header.Values("Cache-Control"))
	resDirectives := ParseResponse(res.Header.Values("Cache-Control"), nil)
	// §    A cache MUST NOT store a response to a request unless:
	// §      *  the request method is understood by the cache;
	if !requestMethodIsUnderstood(req.Method) {
		return true
	}
	// §  *  the response status code is final (see Section 15 of [HTTP]);
	if !responseStatusCodeIsFinal(res.StatusCode) {
		return true
	}
	// §  *  if the response status code is 206 or 304, or the must-understand
	// §     cache directive (see Section 5.2.2.3) is present: the cache
	// §     understands the response status code;
	if !statusCodeUnderstoodIfNeeded(res.StatusCode, resDirectives) {
		return true
	}
	// §  *  the no-store cache directive is not present in the response (see
	// §     Section 5.2.2.5);
	//
	// §  When a cache that implements the
	// §  must-understand directive receives a response that includes it, the
	// §  cache SHOULD ignore the no-store directive if it understands and
	// §  implements the status code's caching requirements.
	if resDirectives.NoStore() && !resDirectives.MustUnderstand() {
		return true
	}
	// the request no-store directive (5.2.1.5) applies as well
	if reqDirectives.NoStore() {
		return true
	}
	// §  *  if the cache is shared: the private response directive is either
	// §     not present or allows a shared cache to store a modified response;
	//
	// the second part of the or is a "MAY" - we don't do that
	if _, private := resDirectives.Private(); shared && private {
		return true
	}
	// §  *  if the cache is shared: the Authorization header field is not
	// §     present in the request (see Section 11.6.2 of [HTTP]) or a
	// §     response directive is present that explicitly allows shared
	// §     caching (see Section 3.5); and
	if shared && req.Header.Get("Authorization") != "" && !mayUseResponseForAuthenticatedRequest(resDirectives) {
		return true
	}
	// §  *  the response contains at least one of the following:
	return !responseIsExplicitlyCacheable(res, resDirectives, shared)
}

func responseIsExplicitlyCacheable(res *http.Response, directives *ResponseDirectives, shared bool) bool {
	_, private := directives.Private()
	_, maxAge := directives.MaxAge()
	_, sMaxAge := directives.SMaxAge()
	// §      -  a public response directive (see Section 5.2.2.9);
	return directives.Public() ||
		// §  -  a private response directive, if the cache is not shared (see
		// §     Section 5.2.2.7);
		(private && !shared) ||
		// §  -  an Expires header field (see Section 5.3);
		res.Header.Get("Expires") != "" ||
		// §  -  a max-age response directive (see Section 5.2.2.1);
		maxAge ||
		// §  -  if the cache is shared: an s-maxage response directive (see
		// §     Section 5.2.2.10);
		(shared && sMaxAge) ||
		// §      -  a status code that is defined as heuristically cacheable (see
		// §         Section 4.2.2).
		statusCodeIsHeuristicallyCacheable(res.StatusCode)
}

// §  3.5.  Storing Responses to Authenticated Requests
// §
// §     In this specification, the following response directives have such
// §     an effect: must-revalidate (Section 5.2.2.2), public (Section
// §     5.2.2.9), and s-maxage (Section 5.2.2.10).
func mayUseResponseForAuthenticatedRequest(directives *ResponseDirectives) bool {
	_, sMaxAge := directives.SMaxAge()
	return directives.MustRevalidate() || directives.Public() || sMaxAge
}

// statusCodeUnderstoodIfNeeded returns false if the response status code needs
// to be understood but isn't, and true otherwise.
func statusCodeUnderstoodIfNeeded(statusCode int, directives *ResponseDirectives) bool {
	if statusCode == http.StatusPartialContent || statusCode == http.StatusNotModified || directives.MustUnderstand() {
		return responseStatusCodeIsUnderstood(statusCode)
	}
	return true
}

func requestMethodIsUnderstood(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead:
		return true
	}
	return false
}

func responseStatusCodeIsUnderstood(statusCode int) bool {
	return statusCode == http.StatusOK
}

func responseStatusCodeIsFinal(statusCode int) bool {
	return statusCode >= 200 && statusCode <= 599
}

// §  Although caching is an entirely optional feature of HTTP, it can be
// §  assumed that reusing a cached response is desirable [...] (e.g., 200, 203, 204,
// §  206, 300, 301, 308, 404, 405, 410, 414, and 501 in this specification)
func statusCodeIsHeuristicallyCacheable(statusCode int) bool {
	switch statusCode {
	case 200, 203, 204, 206, 300, 301, 308, 404, 405, 410, 414, 501:
		return true
	}
	return false
}
