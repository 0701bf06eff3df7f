// Package mqttconsumer feeds device readings published over MQTT into the
// ingestion pipeline.
package mqttconsumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/stress-shield-api/internal/application/ingest"
	"github.com/stress-shield-api/internal/config"
	"github.com/stress-shield-api/internal/domain"
	"github.com/stress-shield-api/internal/pkg/validate"
)

const (
	qos               = 1
	disconnectQuiesce = 250 // ms
	connectTimeout    = 10 * time.Second
)

type submitter interface {
	SubmitReading(ctx context.Context, userID string, in domain.ReadingInput) (*ingest.Submission, error)
}

type userLookup interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

// Consumer subscribes to the readings topic. The last topic segment is the
// user the reading belongs to: stress-shield/readings/{userID}. Only readings
// for existing, enabled accounts reach the pipeline.
type Consumer struct {
	client mqtt.Client
	topic  string
	ingest submitter
	users  userLookup
	logger *zap.Logger
}

// NewClient connects to the broker named in cfg.
func NewClient(cfg *config.Config) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.MQTTBrokerURL)
	opts.SetClientID(cfg.MQTTClientID)
	if cfg.MQTTUsername != "" {
		opts.SetUsername(cfg.MQTTUsername)
	}
	if cfg.MQTTPassword != "" {
		opts.SetPassword(cfg.MQTTPassword)
	}
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, errors.New("connect to MQTT broker: timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to MQTT broker: %w", err)
	}
	return client, nil
}

func NewConsumer(client mqtt.Client, topic string, svc submitter, users userLookup, logger *zap.Logger) *Consumer {
	return &Consumer{client: client, topic: topic, ingest: svc, users: users, logger: logger}
}

// Start subscribes to the readings topic.
func (c *Consumer) Start() error {
	token := c.client.Subscribe(c.topic, qos, func(_ mqtt.Client, msg mqtt.Message) {
		if err := c.handleMessage(msg.Topic(), msg.Payload()); err != nil {
			c.logger.Warn("mqtt reading rejected", zap.String("topic", msg.Topic()), zap.Error(err))
		}
	})
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe to %s: %w", c.topic, token.Error())
	}
	c.logger.Info("mqtt consumer started", zap.String("topic", c.topic))
	return nil
}

// Stop unsubscribes and disconnects from the broker.
func (c *Consumer) Stop() {
	if token := c.client.Unsubscribe(c.topic); token.Wait() && token.Error() != nil {
		c.logger.Error("mqtt unsubscribe", zap.Error(token.Error()))
	}
	c.client.Disconnect(disconnectQuiesce)
	c.logger.Info("mqtt consumer stopped")
}

func (c *Consumer) handleMessage(topic string, payload []byte) error {
	userID := topic[strings.LastIndex(topic, "/")+1:]
	if userID == "" || userID == "+" || userID == "#" {
		return fmt.Errorf("no user in topic %q: %w", topic, domain.ErrBadRequest)
	}

	var in domain.ReadingInput
	if err := json.Unmarshal(payload, &in); err != nil {
		return fmt.Errorf("decode reading: %w: %w", domain.ErrBadRequest, err)
	}
	if err := validate.Struct(in); err != nil {
		return err
	}

	ctx := context.Background()
	if err := c.authorize(ctx, userID); err != nil {
		return err
	}

	sub, err := c.ingest.SubmitReading(ctx, userID, in)
	if err != nil {
		return err
	}
	c.logger.Debug("mqtt reading stored",
		zap.String("user_id", userID),
		zap.String("reading_id", sub.Reading.ReadingID),
		zap.String("stress_level", string(sub.Severity)),
	)
	return nil
}

func (c *Consumer) authorize(ctx context.Context, userID string) error {
	u, err := c.users.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("unknown user %q: %w", userID, domain.ErrForbidden)
	}
	if err != nil {
		return fmt.Errorf("look up user %q: %w", userID, err)
	}
	if !u.Enable {
		return fmt.Errorf("user %q disabled: %w", userID, domain.ErrForbidden)
	}
	return nil
}
