package vrchat

import (
	"fmt"
	"net/http"
	"strings"
)

// Request describes one outbound call. It is built per call and never kept.
type Request struct {
	URL     string
	Method  string
	Headers Headers
	// Body, when non-nil, is encoded as JSON.
	Body interface{}
}

func (r *Request) method() string {
	if r.Method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(r.Method)
}

// Validate checks the URL precondition.
func (r *Request) Validate() error {
	if !strings.HasPrefix(r.URL, "http://") && !strings.HasPrefix(r.URL, "https://") {
		return fmt.Errorf("%w: %q", ErrInvalidURL, r.URL)
	}
	return nil
}
