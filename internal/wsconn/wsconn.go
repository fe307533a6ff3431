// Package wsconn adapts gorilla/websocket's message-oriented Conn to
// the io.ReadWriteCloser stream the MQTT engine expects. MQTT frames
// do not align with WebSocket message boundaries, so reads that span
// two WebSocket messages must be served from a small carry-over
// buffer.
package wsconn

import (
	"io"

	"github.com/gorilla/websocket"
)

// GorillaStream presents a *websocket.Conn as a byte stream, reading
// only binary messages (MQTT over WebSocket always uses the "mqtt"
// subprotocol with binary frames).
type GorillaStream struct {
	conn *websocket.Conn
	rest []byte
}

// NewGorillaStream wraps conn for use as a Connection transport.
func NewGorillaStream(conn *websocket.Conn) *GorillaStream {
	return &GorillaStream{conn: conn}
}

func (s *GorillaStream) Read(p []byte) (int, error) {
	for len(s.rest) == 0 {
		kind, data, err := s.conn.ReadMessage()
		if err != nil {
			return 0, err
		}
		if kind != websocket.BinaryMessage {
			continue
		}
		s.rest = data
	}
	n := copy(p, s.rest)
	s.rest = s.rest[n:]
	return n, nil
}

func (s *GorillaStream) Write(p []byte) (int, error) {
	if err := s.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (s *GorillaStream) Close() error {
	return s.conn.Close()
}

var _ io.ReadWriteCloser = (*GorillaStream)(nil)
