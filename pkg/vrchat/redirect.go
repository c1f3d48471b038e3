package vrchat

import (
	"errors"
	"fmt"
	"net/http"
)

// DefaultMaxRedirects caps the redirect chain of a single request.
const DefaultMaxRedirects = 10

var ErrTooManyRedirects = errors.New("redirect loop detected")

// redirectPolicy enforces the hop limit and drops credentials and custom
// headers when a redirect leaves the original host.
func redirectPolicy(maxRedirects int) func(*http.Request, []*http.Request) error {
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return fmt.Errorf("%w: exceeded %d hops (last URL: %s)",
				ErrTooManyRedirects, maxRedirects, via[len(via)-1].URL)
		}
		if len(via) > 0 && via[len(via)-1].URL.Host != req.URL.Host {
			stripUnsafeHeaders(req)
		}
		return nil
	}
}

var safeHeaders = map[string]bool{
	"User-Agent":      true,
	"Accept":          true,
	"Accept-Language": true,
	"Accept-Encoding": true,
	"Content-Type":    true,
}

func stripUnsafeHeaders(req *http.Request) {
	for key := range req.Header {
		if !safeHeaders[http.CanonicalHeaderKey(key)] {
			req.Header.Del(key)
		}
	}
}
