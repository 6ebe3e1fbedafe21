package history

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/draftroom/go/internal/draft/events"
	"github.com/rs/zerolog/log"
)

// Archiver is an events.Publisher that writes every SessionFinalized event to a Store.
type Archiver struct {
	store Store
	runID uuid.UUID
}

func NewArchiver(store Store) *Archiver {
	return &Archiver{store: store, runID: uuid.New()}
}

// RunID identifies this process in archived records.
func (a *Archiver) RunID() uuid.UUID {
	return a.runID
}

func (a *Archiver) Publish(ctx context.Context, event events.Event) error {
	if event.Type != events.EventTypeSessionFinalized {
		return nil
	}

	decoded, err := events.DecodePayload(event)
	if err != nil {
		return err
	}
	payload, ok := decoded.(*events.SessionFinalizedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", decoded, event.Type)
	}

	endedAt := payload.EndedAt
	record := Record{
		RunID:     a.runID,
		SessionID: payload.SessionID,
		StartedAt: payload.StartedAt,
		EndedAt:   &endedAt,
		Reason:    payload.Reason,
		Members:   payload.Members,
	}
	if err := a.store.SaveFinalized(context.WithoutCancel(ctx), record); err != nil {
		return err
	}

	log.Info().
		Str("run_id", a.runID.String()).
		Int("session_id", record.SessionID).
		Msg("draft session archived")
	return nil
}
