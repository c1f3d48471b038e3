package vrchat

import (
	"net/http"
	"sort"
)

const (
	USER_AGENT_KEY    = "User-Agent"
	CONTENT_TYPE_KEY  = "Content-Type"
	AUTHORIZATION_KEY = "Authorization"
)

// Headers is an ordered list of request headers.
type Headers []Header

// Header is a single key/value pair.
type Header struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// HeadersFromMap converts a header map into Headers sorted by key so the
// outgoing order is stable.
func HeadersFromMap(m map[string]string) Headers {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	h := make(Headers, 0, len(keys))
	for _, k := range keys {
		h = append(h, Header{Key: k, Value: m[k]})
	}
	return h
}

// Get returns the index of the header with the given key, compared in
// canonical form.
func (h Headers) Get(key string) (index int, have bool) {
	key = http.CanonicalHeaderKey(key)
	for i, x := range h {
		if http.CanonicalHeaderKey(x.Key) == key {
			return i, true
		}
	}
	return 0, false
}

// Update sets key to value, appending it when absent.
func (h *Headers) Update(key, value string) {
	if i, ok := h.Get(key); ok {
		(*h)[i] = Header{key, value}
		return
	}
	*h = append(*h, Header{key, value})
}

// Set writes every header into header, skipping User-Agent which is fixed.
func (h Headers) Set(header http.Header) {
	for _, x := range h {
		if http.CanonicalHeaderKey(x.Key) == USER_AGENT_KEY {
			continue
		}
		header.Set(x.Key, x.Value)
	}
}
