package ws

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/stress-shield-api/internal/realtime"
	"github.com/stress-shield-api/internal/transport/http/middleware"
)

type subscriber interface {
	Subscribe(userID string, ch realtime.Channel)
	Unsubscribe(ch realtime.Channel)
}

// Handler upgrades authenticated requests and subscribes the session under
// the token's user. It must sit behind middleware.QueryAuth.
type Handler struct {
	hub      subscriber
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewHandler builds a Handler. checkOrigin may be nil to allow any origin.
func NewHandler(hub subscriber, checkOrigin func(*http.Request) bool, logger *zap.Logger) *Handler {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		logger: logger,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.logger.Debug("websocket upgrade", zap.Error(err))
		return
	}

	sess := newSession(conn, h.logger)
	h.hub.Subscribe(claims.UserID, sess)
	h.logger.Info("realtime session opened", zap.String("user_id", claims.UserID), zap.String("remote", conn.RemoteAddr().String()))

	go sess.writePump()
	go func() {
		sess.readPump()
		h.hub.Unsubscribe(sess)
		h.logger.Info("realtime session closed", zap.String("user_id", claims.UserID))
	}()
}
