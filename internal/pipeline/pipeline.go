// Package pipeline reads the VRChat pipeline websocket, which pushes
// friend, notification and user events for the logged in account.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/angelware-net/spectre/common"
	"github.com/angelware-net/spectre/pkg/logger"
	"github.com/coder/websocket"
	"github.com/tidwall/gjson"
)

// ErrNoAuthToken is returned before dialing when no auth cookie is stored.
var ErrNoAuthToken = errors.New("no auth token stored, log in first")

// Event is one pipeline message. Content is the payload text; the upstream
// sends it as a JSON document encoded in a string, which is unwrapped here.
type Event struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// TokenSource yields the bare auth cookie value.
type TokenSource interface {
	AuthToken() (string, bool, error)
}

// Client dials the pipeline on demand. It holds no connection between runs.
type Client struct {
	tokens TokenSource
	url    string
	http   *http.Client
	log    logger.Logger
}

// New returns a client for pipelineURL, or the production pipeline when it
// is empty. httpClient may be nil.
func New(tokens TokenSource, pipelineURL string, httpClient *http.Client, l logger.Logger) *Client {
	if pipelineURL == "" {
		pipelineURL = common.DefaultPipelineURL
	}
	return &Client{tokens: tokens, url: pipelineURL, http: httpClient, log: logger.OrNop(l)}
}

// ConnectURL returns the pipeline URL carrying token.
func ConnectURL(base, token string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid pipeline url: %w", err)
	}
	q := u.Query()
	q.Set("authToken", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Run connects and passes every decoded event to handle until ctx ends or
// the server closes the stream. Frames that are not valid envelopes are
// logged and skipped.
func (c *Client) Run(ctx context.Context, handle func(Event)) error {
	token, ok, err := c.tokens.AuthToken()
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoAuthToken
	}
	target, err := ConnectURL(c.url, token)
	if err != nil {
		return err
	}
	conn, _, err := websocket.Dial(ctx, target, &websocket.DialOptions{
		HTTPClient: c.http,
		HTTPHeader: http.Header{"User-Agent": []string{common.UserAgent}},
	})
	if err != nil {
		return fmt.Errorf("pipeline dial: %w", err)
	}
	defer conn.CloseNow()
	conn.SetReadLimit(4 << 20)
	c.log.Info("pipeline connected")

	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() != nil || websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return nil
			}
			return fmt.Errorf("pipeline read: %w", err)
		}
		if typ != websocket.MessageText {
			c.log.Info("pipeline: ignoring binary frame of %d bytes", len(data))
			continue
		}
		ev, err := Decode(data)
		if err != nil {
			c.log.Warning("pipeline: %v", err)
			continue
		}
		handle(ev)
	}
}

// Decode parses one envelope.
func Decode(data []byte) (Event, error) {
	if !gjson.ValidBytes(data) {
		return Event{}, fmt.Errorf("malformed message %q", truncate(data))
	}
	res := gjson.ParseBytes(data)
	t := res.Get("type")
	if t.Type != gjson.String || t.String() == "" {
		return Event{}, fmt.Errorf("message without type %q", truncate(data))
	}
	ev := Event{Type: t.String()}
	content := res.Get("content")
	switch content.Type {
	case gjson.String:
		ev.Content = content.String()
	case gjson.Null:
	default:
		ev.Content = content.Raw
	}
	return ev, nil
}

func truncate(b []byte) string {
	const max = 64
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
