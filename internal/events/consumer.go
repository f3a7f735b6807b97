package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrMissingData = errors.New("stream entry has no data field")

// StreamClient is the subset of *redis.Client used by the consumer.
type StreamClient interface {
	XGroupCreateMkStream(ctx context.Context, stream, group, start string) *redis.StatusCmd
	XReadGroup(ctx context.Context, a *redis.XReadGroupArgs) *redis.XStreamSliceCmd
	XAck(ctx context.Context, stream, group string, ids ...string) *redis.IntCmd
}

// Event is one decoded stream entry.
type Event struct {
	MessageID     string          `json:"-"`
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	Timestamp     string          `json:"timestamp"`
	Payload       json.RawMessage `json:"payload"`
}

type HandlerFunc func(ctx context.Context, event Event) error

type ConsumerConfig struct {
	Stream   string
	Group    string
	Consumer string
	Block    time.Duration
	Count    int64

	// MaxDeliveries bounds how often a failing entry is handed to its
	// handler before it is acknowledged and dropped.
	MaxDeliveries int
}

// Consumer reads a Redis stream through a consumer group and dispatches
// entries by event type. Entries whose handler fails stay pending in the
// group and are redelivered on the next poll; everything else is
// acknowledged.
type Consumer struct {
	client   StreamClient
	cfg      ConsumerConfig
	handlers map[string]HandlerFunc
	failures map[string]int
	logger   *slog.Logger
}

func NewConsumer(client StreamClient, cfg ConsumerConfig, logger *slog.Logger) *Consumer {
	if cfg.Group == "" {
		cfg.Group = "storefront-enrichment"
	}
	if cfg.Consumer == "" {
		cfg.Consumer = "worker-1"
	}
	if cfg.Block == 0 {
		cfg.Block = 5 * time.Second
	}
	if cfg.Count == 0 {
		cfg.Count = 1
	}
	if cfg.MaxDeliveries <= 0 {
		cfg.MaxDeliveries = 5
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Consumer{
		client:   client,
		cfg:      cfg,
		handlers: make(map[string]HandlerFunc),
		failures: make(map[string]int),
		logger:   logger.With("component", "stream_consumer", "stream", cfg.Stream, "group", cfg.Group),
	}
}

func (c *Consumer) Handle(eventType string, h HandlerFunc) {
	c.handlers[eventType] = h
}

func (c *Consumer) Run(ctx context.Context) error {
	if err := c.client.XGroupCreateMkStream(ctx, c.cfg.Stream, c.cfg.Group, "0").Err(); err != nil &&
		!strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	c.logger.Info("starting consumer", "consumer", c.cfg.Consumer)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := c.Poll(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Error("failed to read from stream", "error", err)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
			}
		}
	}
}

// Poll first retries entries this consumer was given but never acknowledged,
// then reads one batch of new entries. An empty read is not an error.
func (c *Consumer) Poll(ctx context.Context) error {
	// A negative Block omits BLOCK; history reads return immediately.
	if err := c.read(ctx, "0", -1); err != nil {
		return err
	}
	return c.read(ctx, ">", c.cfg.Block)
}

func (c *Consumer) read(ctx context.Context, start string, block time.Duration) error {
	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.cfg.Group,
		Consumer: c.cfg.Consumer,
		Streams:  []string{c.cfg.Stream, start},
		Count:    c.cfg.Count,
		Block:    block,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	}

	for _, stream := range streams {
		for _, msg := range stream.Messages {
			if c.process(ctx, msg) {
				if err := c.client.XAck(ctx, c.cfg.Stream, c.cfg.Group, msg.ID).Err(); err != nil {
					c.logger.Error("failed to acknowledge message", "id", msg.ID, "error", err)
				}
			}
		}
	}
	return nil
}

// process reports whether the message should be acknowledged.
func (c *Consumer) process(ctx context.Context, msg redis.XMessage) bool {
	event, err := Decode(msg)
	if err != nil {
		c.logger.Error("dropping undecodable message", "id", msg.ID, "error", err)
		return true
	}

	handler, ok := c.handlers[event.Type]
	if !ok {
		c.logger.Debug("skipping event", "id", msg.ID, "event_type", event.Type)
		return true
	}

	if err := handler(ctx, event); err != nil {
		c.failures[msg.ID]++
		attempts := c.failures[msg.ID]
		if attempts >= c.cfg.MaxDeliveries {
			c.logger.Error("giving up on event",
				"id", msg.ID,
				"event_type", event.Type,
				"aggregate_id", event.AggregateID,
				"attempts", attempts,
				"error", err)
			delete(c.failures, msg.ID)
			return true
		}
		c.logger.Error("failed to handle event",
			"id", msg.ID,
			"event_type", event.Type,
			"aggregate_id", event.AggregateID,
			"attempts", attempts,
			"error", err)
		return false
	}
	delete(c.failures, msg.ID)
	return true
}

// Decode parses the JSON envelope stored under "data".
func Decode(msg redis.XMessage) (Event, error) {
	raw, ok := msg.Values["data"].(string)
	if !ok || raw == "" {
		return Event{}, ErrMissingData
	}

	var event Event
	if err := json.Unmarshal([]byte(raw), &event); err != nil {
		return Event{}, fmt.Errorf("failed to parse event envelope: %w", err)
	}
	if event.Type == "" {
		if t, ok := msg.Values["event_type"].(string); ok {
			event.Type = t
		}
	}
	event.MessageID = msg.ID
	return event, nil
}
