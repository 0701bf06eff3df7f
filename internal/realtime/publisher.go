package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stress-shield-api/internal/domain"
)

// Envelope is the frame written to realtime sessions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Publisher hands a stress notification to some delivery path.
type Publisher interface {
	Publish(ctx context.Context, userID string, n domain.StressNotification) error
}

// EncodeNotification renders n as a stress-alert frame.
func EncodeNotification(n domain.StressNotification) ([]byte, error) {
	data, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("marshal notification: %w", err)
	}
	return json.Marshal(Envelope{Event: domain.EventStressAlert, Data: data})
}

// LocalPublisher delivers straight into this process's hub.
type LocalPublisher struct {
	hub *Hub
}

func NewLocalPublisher(hub *Hub) *LocalPublisher {
	return &LocalPublisher{hub: hub}
}

func (p *LocalPublisher) Publish(_ context.Context, userID string, n domain.StressNotification) error {
	frame, err := EncodeNotification(n)
	if err != nil {
		return err
	}
	p.hub.Publish(userID, frame)
	return nil
}

// Fanout publishes to every wrapped publisher, attempting all of them.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, userID string, n domain.StressNotification) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, userID, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
