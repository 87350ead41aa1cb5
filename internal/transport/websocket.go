package transport

import (
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"answer-gateway/internal/stream"
)

const wsWriteWait = 10 * time.Second

// WriteWebSocket sends one JSON text message per fragment, `{"text": ...}`,
// followed by `{"done": true}`, then a normal close frame.
func WriteWebSocket(conn *websocket.Conn, s *stream.Stream) error {
	defer trackStream()()

	for f := range s.Fragments() {
		var payload any = textEvent{Text: s.Text(f)}
		if f.Terminal {
			payload = doneEvent{Done: true}
		}
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteJSON(payload); err != nil {
			return fmt.Errorf("transport: write websocket message: %w", err)
		}
		if f.Terminal {
			break
		}
		countFragment(s)
	}
	return CloseWebSocket(conn, websocket.CloseNormalClosure, "")
}

// CloseWebSocket sends a close frame with the given code and reason.
func CloseWebSocket(conn *websocket.Conn, code int, reason string) error {
	msg := websocket.FormatCloseMessage(code, reason)
	if err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(wsWriteWait)); err != nil && err != websocket.ErrCloseSent {
		return fmt.Errorf("transport: close websocket: %w", err)
	}
	return nil
}
