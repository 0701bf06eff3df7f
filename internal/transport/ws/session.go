// Package ws exposes the notification hub to browsers over websockets.
package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/stress-shield-api/internal/realtime"
)

const (
	writeWait      = 10 * time.Second    // Time allowed to write a message to the peer.
	pongWait       = 60 * time.Second    // Time allowed to read the next pong message from the peer.
	pingPeriod     = (pongWait * 9) / 10 // Must be less than pongWait.
	maxMessageSize = 512
	sendBuffer     = 32
)

// Session is one websocket connection. It is the realtime.Channel the hub
// delivers to; identity is the pointer.
type Session struct {
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	once   sync.Once
	logger *zap.Logger
}

func newSession(conn *websocket.Conn, logger *zap.Logger) *Session {
	return &Session{
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Send queues payload without blocking the publisher.
func (s *Session) Send(payload []byte) error {
	select {
	case <-s.done:
		return realtime.ErrChannelClosed
	default:
	}
	select {
	case s.send <- payload:
		return nil
	case <-s.done:
		return realtime.ErrChannelClosed
	default:
		return realtime.ErrChannelFull
	}
}

// Close stops the write pump, which closes the connection.
func (s *Session) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}

// readPump discards client messages and keeps the read deadline alive.
// It returns when the peer goes away.
func (s *Session) readPump() {
	defer s.Close()
	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Debug("websocket read", zap.Error(err))
			}
			return
		}
	}
}

// writePump writes queued frames, one per websocket message, and pings.
func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()
	for {
		select {
		case msg := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				s.logger.Debug("websocket write", zap.Error(err))
				s.Close()
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.Close()
				return
			}
		case <-s.done:
			_ = s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}
