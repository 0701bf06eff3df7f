// Package realtime routes stress notifications to the live sessions of a user.
package realtime

import (
	"io"
	"reflect"
	"sync"

	"github.com/stress-shield-api/internal/metrics"
	"go.uber.org/zap"
)

// Channel is one live delivery endpoint, typically a websocket session.
// Channels are compared by identity, so implementations should be pointers.
type Channel interface {
	Send(payload []byte) error
}

// Hub maps user IDs to the set of channels subscribed under them.
// A channel belongs to at most one user at a time.
type Hub struct {
	mu     sync.RWMutex
	users  map[string]map[Channel]struct{}
	owners map[Channel]string
	closed bool
	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		users:  make(map[string]map[Channel]struct{}),
		owners: make(map[Channel]string),
		logger: logger,
	}
}

// Subscribe registers ch under userID. Subscribing twice is a no-op;
// subscribing under a different user moves the channel.
//
// ch is a map key, so its dynamic type must be comparable; use a pointer.
// A nil or non-comparable channel is logged and ignored.
func (h *Hub) Subscribe(userID string, ch Channel) {
	if !usable(ch) {
		h.logger.Error("channel rejected: nil or not comparable", zap.String("user_id", userID))
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	if prev, ok := h.owners[ch]; ok {
		if prev == userID {
			return
		}
		h.removeLocked(ch, prev)
	}
	set, ok := h.users[userID]
	if !ok {
		set = make(map[Channel]struct{})
		h.users[userID] = set
	}
	set[ch] = struct{}{}
	h.owners[ch] = userID
	metrics.ActiveSessions.Set(float64(len(h.owners)))
	h.logger.Debug("channel subscribed", zap.String("user_id", userID), zap.Int("user_channels", len(set)))
}

// Unsubscribe removes ch from whichever user it is subscribed under.
func (h *Hub) Unsubscribe(ch Channel) {
	if !usable(ch) {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	userID, ok := h.owners[ch]
	if !ok {
		return
	}
	h.removeLocked(ch, userID)
	metrics.ActiveSessions.Set(float64(len(h.owners)))
	h.logger.Debug("channel unsubscribed", zap.String("user_id", userID))
}

func usable(ch Channel) bool {
	return ch != nil && reflect.TypeOf(ch).Comparable()
}

func (h *Hub) removeLocked(ch Channel, userID string) {
	delete(h.owners, ch)
	if set, ok := h.users[userID]; ok {
		delete(set, ch)
		if len(set) == 0 {
			delete(h.users, userID)
		}
	}
}

// Publish sends payload once to every channel subscribed under userID when
// the call is made. Send failures are logged and counted, never returned.
// It reports how many channels accepted the payload.
func (h *Hub) Publish(userID string, payload []byte) int {
	h.mu.RLock()
	snapshot := make([]Channel, 0, len(h.users[userID]))
	for ch := range h.users[userID] {
		snapshot = append(snapshot, ch)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, ch := range snapshot {
		if err := h.send(ch, payload); err != nil {
			metrics.DeliveryFailuresTotal.Inc()
			h.logger.Warn("notification delivery failed", zap.String("user_id", userID), zap.Error(err))
			continue
		}
		delivered++
	}
	return delivered
}

// send isolates a misbehaving channel, including one that panics.
func (h *Hub) send(ch Channel, payload []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errPanicked{value: r}
		}
	}()
	return ch.Send(payload)
}

// Subscribers reports how many channels are subscribed under userID.
func (h *Hub) Subscribers(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}

// Close drops every subscription and closes channels that implement io.Closer.
// Later subscriptions are ignored.
func (h *Hub) Close() {
	h.mu.Lock()
	channels := make([]Channel, 0, len(h.owners))
	for ch := range h.owners {
		channels = append(channels, ch)
	}
	h.users = make(map[string]map[Channel]struct{})
	h.owners = make(map[Channel]string)
	h.closed = true
	metrics.ActiveSessions.Set(0)
	h.mu.Unlock()

	for _, ch := range channels {
		if c, ok := ch.(io.Closer); ok {
			_ = c.Close()
		}
	}
	h.logger.Info("hub closed", zap.Int("channels", len(channels)))
}
