package adminclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/tahcohcat/healplay/internal/models"
)

// Subscribe streams admin push events into handle until ctx is cancelled
// or the connection drops. Cancellation returns nil.
func (c *Client) Subscribe(ctx context.Context, handle func(models.Event)) error {
	header := http.Header{}
	if c.http.Jar != nil {
		for _, ck := range c.http.Jar.Cookies(c.baseURL) {
			header.Add("Cookie", ck.String())
		}
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.eventsURL(), header)
	if err != nil {
		return fmt.Errorf("failed to connect to event stream: %w", err)
	}
	defer conn.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			conn.Close()
		case <-stop:
		}
	}()

	for {
		var ev models.Event
		if err := conn.ReadJSON(&ev); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("event stream closed: %w", err)
		}
		handle(ev)
	}
}

// Listen keeps board in sync with the server's push events.
func Listen(ctx context.Context, c *Client, board *Board, onError func(error)) error {
	return c.Subscribe(ctx, func(ev models.Event) {
		if err := board.Apply(ev); err != nil && onError != nil {
			onError(err)
		}
	})
}
