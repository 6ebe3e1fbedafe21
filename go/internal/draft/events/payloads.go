package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/draftroom/go/internal/models"
)

// EventType names a draft session event. It is also the last token of the NATS subject.
type EventType string

const (
	EventTypeSessionStarted   EventType = "SessionStarted"
	EventTypeTimerTick        EventType = "TimerTick"
	EventTypeSessionFinalized EventType = "SessionFinalized"
)

// Event is the unit handed to publishers. Payload holds one of the *Payload structs below, already encoded.
type Event struct {
	ID        uuid.UUID       `json:"id"`
	Type      EventType       `json:"type"`
	SessionID int             `json:"session_id"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// NewEvent encodes payload and stamps a fresh event id.
func NewEvent(eventType EventType, sessionID int, at time.Time, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return Event{
		ID:        uuid.New(),
		Type:      eventType,
		SessionID: sessionID,
		Timestamp: at,
		Payload:   raw,
	}, nil
}

// SessionStartedPayload is the payload for a SessionStarted event
type SessionStartedPayload struct {
	SessionID   int       `json:"session_id"`
	StartedAt   time.Time `json:"started_at"`
	DurationSec int       `json:"duration_sec"`
}

// TimerTickPayload is the payload for a TimerTick event
type TimerTickPayload struct {
	SessionID        int       `json:"session_id"`
	TimeRemainingSec int       `json:"time_remaining_sec"`
	TickedAt         time.Time `json:"ticked_at"`
}

// SessionFinalizedPayload is the payload for a SessionFinalized event
type SessionFinalizedPayload struct {
	SessionID int                   `json:"session_id"`
	StartedAt time.Time             `json:"started_at"`
	EndedAt   time.Time             `json:"ended_at"`
	Reason    models.FinalizeReason `json:"reason"`
	Members   []models.Member       `json:"members"`
}

// DecodePayload unmarshals the event payload into the struct matching its type.
func DecodePayload(event Event) (any, error) {
	var target any
	switch event.Type {
	case EventTypeSessionStarted:
		target = &SessionStartedPayload{}
	case EventTypeTimerTick:
		target = &TimerTickPayload{}
	case EventTypeSessionFinalized:
		target = &SessionFinalizedPayload{}
	default:
		return nil, fmt.Errorf("unknown event type %q", event.Type)
	}
	if err := json.Unmarshal(event.Payload, target); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", event.Type, err)
	}
	return target, nil
}
