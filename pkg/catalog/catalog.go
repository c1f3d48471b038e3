// Package catalog lists the plain authenticated API calls as data. Each
// entry is a method and a path template; calling one expands the template
// and sends it through the shared client.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/angelware-net/spectre/pkg/vrchat"
)

var (
	ErrUnknownEndpoint = errors.New("unknown endpoint")
	ErrMissingParam    = errors.New("missing parameter")
)

// Endpoint is one catalog entry. Path is relative to the API root and may
// hold {name} placeholders, in the path or the query.
type Endpoint struct {
	Name     string
	Method   string
	Path     string
	Defaults map[string]string
}

var endpoints = []Endpoint{
	{Name: "currentUser", Method: http.MethodGet, Path: "/auth/user"},
	{Name: "friends", Method: http.MethodGet, Path: "/auth/user/friends?offline={offline}",
		Defaults: map[string]string{"offline": "false"}},
	{Name: "favorites", Method: http.MethodGet, Path: "/favorites?n=100&type=friend"},
	{Name: "user", Method: http.MethodGet, Path: "/users/{userId}"},
	{Name: "instance", Method: http.MethodGet, Path: "/instances/{instanceId}"},
	{Name: "world", Method: http.MethodGet, Path: "/worlds/{worldId}"},
	{Name: "group", Method: http.MethodGet, Path: "/groups/{groupId}"},
	{Name: "avatars", Method: http.MethodGet,
		Path:     "/avatars?user=me&sort=updated&n=100&releaseStatus=all&order=descending&offset={offset}",
		Defaults: map[string]string{"offset": "0"}},
	{Name: "currentAvatar", Method: http.MethodGet, Path: "/avatars/{avatarId}"},
	{Name: "notifications", Method: http.MethodGet, Path: "/notifications?type=all"},
	{Name: "seeNotification", Method: http.MethodPut, Path: "/auth/user/notifications/{notificationId}/see"},
}

var byName = func() map[string]Endpoint {
	m := make(map[string]Endpoint, len(endpoints))
	for _, e := range endpoints {
		m[e.Name] = e
	}
	return m
}()

// Lookup returns the endpoint registered under name.
func Lookup(name string) (Endpoint, bool) {
	e, ok := byName[name]
	return e, ok
}

// List returns every endpoint sorted by name.
func List() []Endpoint {
	out := make([]Endpoint, len(endpoints))
	copy(out, endpoints)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Params returns the placeholder names in template order.
func (e Endpoint) Params() []string {
	var names []string
	rest := e.Path
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			return names
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			return names
		}
		names = append(names, rest[open+1:open+end])
		rest = rest[open+end+1:]
	}
}

// Expand fills the placeholders from params, falling back to defaults.
// Path placeholders are path-escaped and query placeholders query-escaped.
func (e Endpoint) Expand(params map[string]string) (string, error) {
	var sb strings.Builder
	inQuery := false
	rest := e.Path
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			sb.WriteString(rest)
			return sb.String(), nil
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			sb.WriteString(rest)
			return sb.String(), nil
		}
		lit := rest[:open]
		if strings.IndexByte(lit, '?') >= 0 {
			inQuery = true
		}
		sb.WriteString(lit)
		name := rest[open+1 : open+end]
		value, ok := params[name]
		if !ok || value == "" {
			value, ok = e.Defaults[name]
		}
		if !ok || value == "" {
			return "", fmt.Errorf("%w %q for endpoint %q", ErrMissingParam, name, e.Name)
		}
		if inQuery {
			sb.WriteString(url.QueryEscape(value))
		} else {
			sb.WriteString(url.PathEscape(value))
		}
		rest = rest[open+end+1:]
	}
}

// Catalog dispatches endpoints through a client.
type Catalog struct {
	client *vrchat.Client
}

func New(client *vrchat.Client) *Catalog {
	return &Catalog{client: client}
}

// Request builds the request for name without sending it.
func (c *Catalog) Request(name string, params map[string]string) (*vrchat.Request, error) {
	e, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEndpoint, name)
	}
	path, err := e.Expand(params)
	if err != nil {
		return nil, err
	}
	return &vrchat.Request{URL: c.client.APIURL(path), Method: e.Method}, nil
}

// Call sends the named endpoint with the stored session and returns the raw
// body.
func (c *Catalog) Call(ctx context.Context, name string, params map[string]string) (string, error) {
	req, err := c.Request(name, params)
	if err != nil {
		return "", err
	}
	return c.client.Send(ctx, req)
}
