package eventbus

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/UtkarshSingh-06/Taxigo/pkg/logger"
)

// Subjects for intelligence events.
const (
	SubjectDemandPredicted = "intelligence.demand.predicted"
	SubjectRouteOptimized  = "intelligence.route.optimized"
	SubjectSafetyAlert     = "intelligence.safety.alert"
)

// Event is the envelope for all events published through the bus.
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Source    string          `json:"source"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// NewEvent creates a new event with a unique ID and current timestamp.
func NewEvent(eventType, source string, data interface{}) (*Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal event data: %w", err)
	}
	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    source,
		Timestamp: time.Now().UTC(),
		Data:      raw,
	}, nil
}

// Publisher publishes intelligence events.
type Publisher interface {
	Publish(subject string, data interface{}) error
}

// Bus wraps a NATS connection for publishing.
type Bus struct {
	conn   *nats.Conn
	source string
}

// Connect establishes a NATS connection.
func Connect(url, source string) (*Bus, error) {
	conn, err := nats.Connect(url,
		nats.Name(source),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return &Bus{conn: conn, source: source}, nil
}

// Publish wraps data in an event envelope and publishes it.
func (b *Bus) Publish(subject string, data interface{}) error {
	event, err := NewEvent(subject, b.source, data)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := b.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}

	logger.Debug("published event",
		zap.String("subject", subject),
		zap.String("event_id", event.ID))
	return nil
}

// Close drains and closes the connection.
func (b *Bus) Close() {
	if b.conn != nil {
		_ = b.conn.Drain()
	}
}

var _ Publisher = (*Bus)(nil)
