package httpx

import "net/http"

// HeaderRoundTripper sets a fixed header set on every outgoing request without
// overriding headers the caller already set.
type HeaderRoundTripper struct {
	next    http.RoundTripper
	headers http.Header
}

func NewHeaderRoundTripper(next http.RoundTripper, headers http.Header) HeaderRoundTripper {
	return HeaderRoundTripper{
		next:    next,
		headers: headers.Clone(),
	}
}

func (rt HeaderRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())

	for key, values := range rt.headers {
		if r.Header.Get(key) != "" {
			continue
		}

		for _, v := range values {
			r.Header.Add(key, v)
		}
	}

	return rt.next.RoundTrip(r) //nolint:wrapcheck
}

// BrowserHeaders is the header set of a desktop Chrome talking to a WebApp backend.
func BrowserHeaders(userAgent, origin string) http.Header {
	h := make(http.Header)
	h.Set("User-Agent", userAgent)
	h.Set("Accept", "application/json, text/plain, */*")
	h.Set("Accept-Language", "en-US,en;q=0.9")
	h.Set("Origin", origin)
	h.Set("Referer", origin+"/")
	h.Set("Sec-Fetch-Dest", "empty")
	h.Set("Sec-Fetch-Mode", "cors")
	h.Set("Sec-Fetch-Site", "same-origin")

	return h
}
