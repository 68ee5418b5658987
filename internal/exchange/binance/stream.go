package binance

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// Listen subscribes to one or more market data streams over a single
// connection and invokes onMessage for every inbound frame until ctx is
// cancelled or the venue closes the connection. There is no reconnect.
func (c *Client) Listen(ctx context.Context, streams []string, onMessage func([]byte), onState func(string)) error {
	endpoint, err := c.streamEndpoint(streams)
	if err != nil {
		return err
	}
	c.log.WithField("url", endpoint).Debug("stream dial")
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	onState("open")
	defer onState("closed")

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			deadline := time.Now().Add(time.Second)
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}
		onMessage(msg)
	}
}

// streamEndpoint builds the raw or combined stream URL: one stream rides the
// /ws path, several are multiplexed through /stream?streams=a/b.
func (c *Client) streamEndpoint(streams []string) (string, error) {
	cleaned := make([]string, 0, len(streams))
	for _, s := range streams {
		if s = strings.TrimSpace(s); s != "" {
			cleaned = append(cleaned, s)
		}
	}
	if len(cleaned) == 0 {
		return "", errors.New("at least one stream name is required")
	}
	base := strings.TrimRight(c.settings.StreamURL, "/")
	if len(cleaned) == 1 {
		return base + "/ws/" + cleaned[0], nil
	}
	return base + "/stream?streams=" + strings.Join(cleaned, "/"), nil
}
