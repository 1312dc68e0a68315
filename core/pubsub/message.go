package pubsub

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Message is the envelope network buses carry.
// Payload holds the JSON-encoded event body.
type Message struct {
	ID          string          `json:"id"`
	Topic       string          `json:"topic"`
	Payload     json.RawMessage `json:"payload"`
	PublishedAt time.Time       `json:"published_at"`
}

// NewMessage JSON-encodes payload into a Message with a fresh ID and timestamp.
// A []byte or json.RawMessage payload is used as-is and must be valid JSON.
func NewMessage(topic string, payload any) (Message, error) {
	var raw json.RawMessage

	switch p := payload.(type) {
	case json.RawMessage:
		raw = p
	case []byte:
		raw = json.RawMessage(p)
	default:
		data, err := json.Marshal(payload)
		if err != nil {
			return Message{}, fmt.Errorf("pubsub: failed to marshal payload: %w", err)
		}
		raw = data
	}

	if !json.Valid(raw) {
		return Message{}, fmt.Errorf("pubsub: payload for topic %q is not valid JSON", topic)
	}

	return Message{
		ID:          uuid.NewString(),
		Topic:       topic,
		Payload:     raw,
		PublishedAt: time.Now().UTC(),
	}, nil
}

// Decode unmarshals the message payload into T.
func Decode[T any](m Message) (T, error) {
	var v T
	if err := json.Unmarshal(m.Payload, &v); err != nil {
		return v, fmt.Errorf("pubsub: failed to decode message %s: %w", m.ID, err)
	}
	return v, nil
}

// Prepare fills in a missing ID and timestamp and sets the topic.
// Backends call it before encoding a message for the wire.
func (m Message) Prepare(topic string) Message {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.PublishedAt.IsZero() {
		m.PublishedAt = time.Now().UTC()
	}
	m.Topic = topic
	return m
}
