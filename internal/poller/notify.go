package poller

import (
	"context"
	"net/url"

	"github.com/berlincodez/Campus-Skill-link/internal/event"
	"github.com/gorilla/websocket"
)

// subscribe opens a websocket to the thread room and streams its events until ctx ends or
// the server closes the socket.
func subscribe(ctx context.Context, socketURL, userID, connectionID string) (<-chan event.WsEvent, error) {
	u, err := url.Parse(socketURL)
	if err != nil {
		return nil, err
	}
	u.RawQuery = url.Values{"userId": {userID}, "connectionId": {connectionID}}.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, err
	}

	out := make(chan event.WsEvent, 8)
	stop := make(chan struct{})

	go func() {
		select {
		case <-ctx.Done():
		case <-stop:
		}
		_ = conn.Close()
	}()

	go func() {
		defer close(out)
		defer close(stop)
		for {
			var ev event.WsEvent
			if err := conn.ReadJSON(&ev); err != nil {
				return
			}
			// a pending nudge already triggers a refresh
			select {
			case out <- ev:
			default:
			}
		}
	}()

	return out, nil
}
