// Package events publishes notification events to a Redis stream so other
// services (mail workers, realtime gateways) can follow the lifecycle.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/pkg/logging"
)

// DefaultStream is the stream notifications are appended to
const DefaultStream = "recruito:notifications"

// maxStreamLen caps the stream with approximate trimming
const maxStreamLen = 10000

// Event is the stream payload
type Event struct {
	EventID        uuid.UUID               `json:"event_id"`
	Type           domain.NotificationType `json:"type"`
	NotificationID string                  `json:"notification_id"`
	ReceiverID     string                  `json:"receiver_id"`
	ReceiverEmail  string                  `json:"receiver_email,omitempty"`
	Title          string                  `json:"title"`
	Message        string                  `json:"message"`
	Metadata       map[string]string       `json:"metadata,omitempty"`
	Timestamp      time.Time               `json:"timestamp"`
}

// Publisher appends events to a Redis stream
type Publisher struct {
	client *redis.Client
	stream string
	log    *logging.Logger
}

// NewPublisher returns nil when client is nil; a nil Publisher drops events.
func NewPublisher(client *redis.Client, stream string, log *logging.Logger) *Publisher {
	if client == nil {
		return nil
	}
	if stream == "" {
		stream = DefaultStream
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Publisher{client: client, stream: stream, log: log}
}

// Publish writes one notification event
func (p *Publisher) Publish(ctx context.Context, n domain.Notification) error {
	if p == nil || p.client == nil {
		return nil
	}

	event := Event{
		EventID:        uuid.New(),
		Type:           n.Type,
		NotificationID: n.ID,
		ReceiverID:     n.ReceiverID,
		ReceiverEmail:  n.ReceiverEmail,
		Title:          n.Title,
		Message:        n.Message,
		Metadata:       n.Metadata,
		Timestamp:      n.CreatedAt.UTC(),
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	result := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: maxStreamLen,
		Approx: true,
		Values: map[string]any{
			"type":  string(event.Type),
			"event": string(payload),
		},
	})
	if err := result.Err(); err != nil {
		return fmt.Errorf("publish to stream: %w", err)
	}

	p.log.Debug("published notification event",
		"type", event.Type,
		"receiver_id", event.ReceiverID,
		"stream_id", result.Val(),
	)
	return nil
}

// Read returns up to count events after lastID ("0" reads from the start)
func (p *Publisher) Read(ctx context.Context, lastID string, count int64) ([]Event, string, error) {
	if p == nil || p.client == nil {
		return nil, lastID, nil
	}
	if lastID == "" {
		lastID = "0"
	}

	streams, err := p.client.XRead(ctx, &redis.XReadArgs{
		Streams: []string{p.stream, lastID},
		Count:   count,
		Block:   -1,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil, lastID, nil
	}
	if err != nil {
		return nil, lastID, fmt.Errorf("read stream: %w", err)
	}

	var out []Event
	for _, s := range streams {
		for _, msg := range s.Messages {
			lastID = msg.ID
			raw, ok := msg.Values["event"].(string)
			if !ok {
				continue
			}
			var ev Event
			if err := json.Unmarshal([]byte(raw), &ev); err != nil {
				p.log.Warn("skipping malformed stream entry", "id", msg.ID, "error", err)
				continue
			}
			out = append(out, ev)
		}
	}
	return out, lastID, nil
}
