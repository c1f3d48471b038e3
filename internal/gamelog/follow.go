package gamelog

import (
	"context"
	"errors"
	"fmt"

	"github.com/coder/websocket"
)

// DefaultSidecarURL is where the log reader sidecar publishes lines.
const DefaultSidecarURL = "ws://127.0.0.1:40602"

// Follow connects to a log reader sidecar and stores every tracked line it
// sends until ctx ends or the connection drops. It returns the number of
// lines stored.
func (s *Store) Follow(ctx context.Context, url string) (int, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return 0, fmt.Errorf("error: cannot connect to log sidecar: %w", err)
	}
	defer conn.CloseNow()
	conn.SetReadLimit(1 << 20)

	n := 0
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() != nil || websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return n, nil
			}
			var ce websocket.CloseError
			if errors.As(err, &ce) {
				s.log.Warning("log sidecar closed: %v", ce)
				return n, nil
			}
			return n, err
		}
		ok, err := s.Add(ctx, string(data))
		if err != nil {
			s.log.Error("%v", err)
			continue
		}
		if ok {
			n++
		}
	}
}
