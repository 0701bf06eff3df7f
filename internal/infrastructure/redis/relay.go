// Package redisrelay fans stress notifications out across API instances
// through a Redis pub/sub channel.
package redisrelay

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/stress-shield-api/internal/config"
	"github.com/stress-shield-api/internal/domain"
	"github.com/stress-shield-api/internal/realtime"
)

// message is what travels over the Redis channel: an already-encoded frame
// addressed to one user.
type message struct {
	UserID string          `json:"user_id"`
	Frame  json.RawMessage `json:"frame"`
}

type redisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

type localHub interface {
	Publish(userID string, payload []byte) int
}

// Relay publishes notifications to Redis and, through Run, delivers every
// relayed notification into this instance's hub.
type Relay struct {
	client  redisPublisher
	sub     *redis.Client
	channel string
	hub     localHub
	logger  *zap.Logger
}

// NewClient creates a Redis client from cfg and checks the connection.
func NewClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func NewRelay(client *redis.Client, channel string, hub localHub, logger *zap.Logger) *Relay {
	return &Relay{client: client, sub: client, channel: channel, hub: hub, logger: logger}
}

func (r *Relay) Publish(ctx context.Context, userID string, n domain.StressNotification) error {
	payload, err := encode(userID, n)
	if err != nil {
		return err
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

// Run subscribes to the relay channel and blocks until ctx is done.
func (r *Relay) Run(ctx context.Context) error {
	pubsub := r.sub.Subscribe(ctx, r.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", r.channel, err)
	}
	r.logger.Info("redis relay subscribed", zap.String("channel", r.channel))

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			r.deliver(msg.Payload)
		}
	}
}

func (r *Relay) deliver(payload string) {
	var m message
	if err := json.Unmarshal([]byte(payload), &m); err != nil || m.UserID == "" {
		r.logger.Warn("drop malformed relay message", zap.Error(err))
		return
	}
	r.hub.Publish(m.UserID, m.Frame)
}

func encode(userID string, n domain.StressNotification) ([]byte, error) {
	frame, err := realtime.EncodeNotification(n)
	if err != nil {
		return nil, err
	}
	return json.Marshal(message{UserID: userID, Frame: frame})
}
