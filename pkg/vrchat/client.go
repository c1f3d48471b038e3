// Package vrchat sends authenticated requests to the VRChat API. Every
// request carries the fixed Spectre user agent and, unless it targets a
// public endpoint, a cookie jar rebuilt from the persisted session.
package vrchat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/angelware-net/spectre/common"
	"github.com/angelware-net/spectre/pkg/logger"
	"github.com/angelware-net/spectre/pkg/session"
)

// Options configure a Client. Empty bases select the production API; a nil
// *Options additionally selects the default timeout.
type Options struct {
	// APIBase is the authenticated API root, without trailing slash.
	APIBase string
	// WebBase is the public web API root used for time and visits.
	WebBase string
	// Timeout bounds a whole request including redirects. Zero disables it.
	Timeout time.Duration
	// ProxyURL routes traffic through an http, https or socks5 proxy.
	ProxyURL string
	// Transport overrides the transport built from ProxyURL.
	Transport http.RoundTripper
	// MaxRedirects defaults to DefaultMaxRedirects.
	MaxRedirects int
	Logger       logger.Logger
}

// Client is safe for concurrent use. It holds no cookies of its own.
type Client struct {
	sessions     *session.Manager
	transport    http.RoundTripper
	apiBase      string
	webBase      string
	timeout      time.Duration
	maxRedirects int
	log          logger.Logger
}

// Response is the outcome of a request that reached the server.
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       string
}

// NewClient builds a client over the given session manager. opts may be nil.
func NewClient(sessions *session.Manager, opts *Options) (*Client, error) {
	if opts == nil {
		opts = &Options{Timeout: common.DefaultHTTPTimeout}
	}
	c := &Client{
		sessions:     sessions,
		transport:    opts.Transport,
		apiBase:      strings.TrimRight(opts.APIBase, "/"),
		webBase:      strings.TrimRight(opts.WebBase, "/"),
		timeout:      opts.Timeout,
		maxRedirects: opts.MaxRedirects,
		log:          logger.OrNop(opts.Logger),
	}
	if c.apiBase == "" {
		c.apiBase = common.DefaultAPIBase
	}
	if c.webBase == "" {
		c.webBase = common.DefaultWebBase
	}
	if c.maxRedirects <= 0 {
		c.maxRedirects = DefaultMaxRedirects
	}
	if c.transport == nil {
		t, err := newTransport(opts.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("proxy: %w", err)
		}
		c.transport = t
	}
	return c, nil
}

// APIURL joins path onto the authenticated API root.
func (c *Client) APIURL(path string) string {
	return c.apiBase + "/" + strings.TrimLeft(path, "/")
}

// WebURL joins path onto the public web API root.
func (c *Client) WebURL(path string) string {
	return c.webBase + "/" + strings.TrimLeft(path, "/")
}

// Sessions returns the session manager the client reads cookies from.
func (c *Client) Sessions() *session.Manager {
	return c.sessions
}

// Send performs an authenticated request and returns the response body.
// Non-2xx replies fail with *HTTPStatusError carrying the body.
func (c *Client) Send(ctx context.Context, req *Request) (string, error) {
	resp, err := c.Do(ctx, req, true)
	if err != nil {
		return "", err
	}
	return resp.Body, nil
}

// Do performs req. When authenticated is set the stored session cookies are
// attached through a jar built for this call only. A non-2xx reply returns
// both the response and an *HTTPStatusError.
func (c *Client) Do(ctx context.Context, req *Request, authenticated bool) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var body io.Reader
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, &SerializationError{Err: err}
		}
		body = bytes.NewReader(b)
	}
	method := req.method()
	hreq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, &TransportError{Method: method, URL: req.URL, Err: err}
	}
	req.Headers.Set(hreq.Header)
	hreq.Header.Set(USER_AGENT_KEY, common.UserAgent)
	if body != nil && hreq.Header.Get(CONTENT_TYPE_KEY) == "" {
		hreq.Header.Set(CONTENT_TYPE_KEY, "application/json")
	}

	hc := &http.Client{
		Transport:     c.transport,
		Timeout:       c.timeout,
		CheckRedirect: redirectPolicy(c.maxRedirects),
	}
	if authenticated && c.sessions != nil {
		jar, err := c.sessions.BuildJar(req.URL)
		if err != nil {
			return nil, err
		}
		hc.Jar = jar
	}

	c.log.Info("%s %s", method, req.URL)
	hresp, err := hc.Do(hreq)
	if err != nil {
		return nil, &TransportError{Method: method, URL: req.URL, Err: err}
	}
	defer hresp.Body.Close()
	raw, err := io.ReadAll(hresp.Body)
	if err != nil {
		return nil, &TransportError{Method: method, URL: req.URL, Err: err}
	}
	resp := &Response{
		StatusCode: hresp.StatusCode,
		Status:     hresp.Status,
		Header:     hresp.Header,
		Body:       string(raw),
	}
	if hresp.StatusCode < 200 || hresp.StatusCode > 299 {
		c.log.Warning("%s %s: %s", method, req.URL, hresp.Status)
		return resp, &HTTPStatusError{
			StatusCode: hresp.StatusCode,
			Status:     hresp.Status,
			Body:       resp.Body,
		}
	}
	return resp, nil
}
