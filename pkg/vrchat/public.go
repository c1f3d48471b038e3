package vrchat

import (
	"context"
	"net/http"
	"strconv"
	"strings"
)

// ServerTime returns the server's current time as the raw trimmed body of
// GET {web}/time. No cookies are sent.
func (c *Client) ServerTime(ctx context.Context) (string, error) {
	resp, err := c.Do(ctx, &Request{URL: c.WebURL("time"), Method: http.MethodGet}, false)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Body), nil
}

// VisitorCount returns the number of users currently online, read from
// GET {web}/visits. No cookies are sent.
func (c *Client) VisitorCount(ctx context.Context) (uint64, error) {
	resp, err := c.Do(ctx, &Request{URL: c.WebURL("visits"), Method: http.MethodGet}, false)
	if err != nil {
		return 0, err
	}
	body := strings.TrimSpace(resp.Body)
	n, err := strconv.ParseUint(body, 10, 64)
	if err != nil {
		return 0, &SerializationError{Body: body, Err: err}
	}
	return n, nil
}
