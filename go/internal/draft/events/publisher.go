package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// Publisher delivers draft events to some downstream consumer.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// LogPublisher writes events to the global logger. Ticks go to debug so they don't flood info.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, event Event) error {
	logEvent := log.Info()
	if event.Type == EventTypeTimerTick {
		logEvent = log.Debug()
	}
	logEvent.
		Str("event_id", event.ID.String()).
		Str("event_type", string(event.Type)).
		Int("session_id", event.SessionID).
		Msg("draft event")
	return nil
}

// MultiPublisher fans an event out to every publisher and joins their errors.
type MultiPublisher []Publisher

func (m MultiPublisher) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// envelope is the wire format shared by every draft event subject.
type envelope struct {
	EventID   string          `json:"eventId"`
	EventType string          `json:"eventType"`
	DraftID   string          `json:"draftId"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// Encode renders event in the envelope format.
func Encode(event Event) ([]byte, error) {
	data, err := json.Marshal(envelope{
		EventID:   event.ID.String(),
		EventType: string(event.Type),
		DraftID:   strconv.Itoa(event.SessionID),
		Timestamp: event.Timestamp,
		Payload:   event.Payload,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return data, nil
}

// NATSConfig holds configuration for the NATS publisher
type NATSConfig struct {
	URL           string
	SubjectPrefix string // e.g. "draft.events"
	MaxReconnects int
	ReconnectWait time.Duration
}

// DefaultNATSConfig returns default NATS publisher configuration
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           nats.DefaultURL,
		SubjectPrefix: "draft.events",
		MaxReconnects: -1, // Infinite
		ReconnectWait: 2 * time.Second,
	}
}

// natsConn is the slice of *nats.Conn the publisher needs.
type natsConn interface {
	Publish(subj string, data []byte) error
}

// NATSPublisher publishes events on <prefix>.<EventType>.
type NATSPublisher struct {
	conn   natsConn
	nc     *nats.Conn
	prefix string
}

// NewNATSPublisher connects to NATS and returns a publisher using it.
func NewNATSPublisher(config NATSConfig) (*NATSPublisher, error) {
	opts := []nats.Option{
		nats.Name("draftroom"),
		nats.MaxReconnects(config.MaxReconnects),
		nats.ReconnectWait(config.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	log.Info().Str("url", nc.ConnectedUrl()).Str("prefix", config.SubjectPrefix).Msg("NATS publisher connected")
	return &NATSPublisher{conn: nc, nc: nc, prefix: config.SubjectPrefix}, nil
}

func newNATSPublisherWithConn(conn natsConn, prefix string) *NATSPublisher {
	return &NATSPublisher{conn: conn, prefix: prefix}
}

// Subject returns the subject an event type is published on.
func (p *NATSPublisher) Subject(eventType EventType) string {
	return fmt.Sprintf("%s.%s", p.prefix, eventType)
}

func (p *NATSPublisher) Publish(_ context.Context, event Event) error {
	data, err := Encode(event)
	if err != nil {
		return err
	}
	if err := p.conn.Publish(p.Subject(event.Type), data); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}

// IsConnected reports whether the underlying NATS connection is up.
func (p *NATSPublisher) IsConnected() bool {
	return p.nc != nil && p.nc.IsConnected()
}

// Close flushes pending messages and closes the connection.
func (p *NATSPublisher) Close() {
	if p.nc == nil {
		return
	}
	if err := p.nc.Drain(); err != nil {
		log.Warn().Err(err).Msg("NATS drain failed")
		p.nc.Close()
	}
}
