package sink

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pagescope/pagescope/pkg/capability"
)

// StreamSink pushes each event as a JSON frame over a websocket to a live
// observer endpoint. Writes that fail are dropped after one reconnect
// attempt; delivery stays fire-and-forget.
type StreamSink struct {
	url    string
	dialer *websocket.Dialer

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewStreamSink connects to the observer at url (ws:// or wss://).
func NewStreamSink(url string) (*StreamSink, error) {
	s := &StreamSink{
		url: url,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 5 * time.Second,
		},
	}
	if err := s.connect(); err != nil {
		return nil, fmt.Errorf("dial observer: %w", err)
	}
	return s, nil
}

func (s *StreamSink) connect() error {
	conn, _, err := s.dialer.Dial(s.url, nil)
	if err != nil {
		return err
	}
	s.conn = conn
	return nil
}

// Deliver writes the event as one JSON frame.
func (s *StreamSink) Deliver(ctx context.Context, event capability.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		if err := s.connect(); err != nil {
			return fmt.Errorf("observer unreachable: %w", err)
		}
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = s.conn.SetWriteDeadline(deadline)
	}

	if err := s.conn.WriteJSON(event); err != nil {
		// One reconnect attempt, then give up on this event.
		s.conn.Close()
		s.conn = nil
		if err := s.connect(); err != nil {
			return fmt.Errorf("observer write: %w", err)
		}
		return s.conn.WriteJSON(event)
	}
	return nil
}

// Close closes the websocket connection.
func (s *StreamSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}
