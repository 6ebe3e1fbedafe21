package gateway

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/draftroom/go/internal/draft/session"
)

// MessageTypeState is sent once to every client right after it connects.
const MessageTypeState = "State"

// StateProvider supplies the state a newly connected console needs to render.
type StateProvider interface {
	Snapshot() session.Snapshot
}

// StateProviderFunc adapts a function to StateProvider.
type StateProviderFunc func() session.Snapshot

func (f StateProviderFunc) Snapshot() session.Snapshot { return f() }

// Message is what clients receive over the socket: either a draft event or the initial state.
type Message struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	SessionID int             `json:"session_id,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// StatePayload is the data of a State message. ServerTime lets clients correct for clock skew.
type StatePayload struct {
	session.Snapshot
	ServerTime time.Time `json:"server_time"`
}

func newStateMessage(provider StateProvider, now time.Time) ([]byte, error) {
	snap := provider.Snapshot()
	data, err := json.Marshal(StatePayload{Snapshot: snap, ServerTime: now})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal state: %w", err)
	}

	msg := Message{
		ID:        uuid.New().String(),
		Type:      MessageTypeState,
		Timestamp: now,
		Data:      data,
	}
	if snap.Active != nil {
		msg.SessionID = snap.Active.ID
	}
	return json.Marshal(msg)
}
