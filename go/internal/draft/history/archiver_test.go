package history

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mcdev12/draftroom/go/internal/draft/events"
	"github.com/mcdev12/draftroom/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu      sync.Mutex
	records []Record
	err     error
}

func (s *memoryStore) SaveFinalized(_ context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, record)
	return nil
}

func (s *memoryStore) ListFinalized(_ context.Context, limit int) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := []Record{}
	for i := len(s.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.records[i])
	}
	return out, nil
}

func finalizedEvent(t *testing.T, sessionID int) events.Event {
	t.Helper()
	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	event, err := events.NewEvent(events.EventTypeSessionFinalized, sessionID, start.Add(time.Minute), events.SessionFinalizedPayload{
		SessionID: sessionID,
		StartedAt: start,
		EndedAt:   start.Add(time.Minute),
		Reason:    models.FinalizeReasonExpired,
		Members:   []models.Member{{ID: 1, Name: "John Doe", Score: 10, Rank: 5}},
	})
	require.NoError(t, err)
	return event
}

func TestArchiver_WritesOneRecordPerFinalizedSession(t *testing.T) {
	store := &memoryStore{}
	archiver := NewArchiver(store)
	ctx := context.Background()

	tick, err := events.NewEvent(events.EventTypeTimerTick, 1, time.Now(), events.TimerTickPayload{SessionID: 1})
	require.NoError(t, err)
	require.NoError(t, archiver.Publish(ctx, tick))
	require.NoError(t, archiver.Publish(ctx, finalizedEvent(t, 1)))
	require.NoError(t, archiver.Publish(ctx, finalizedEvent(t, 2)))

	require.Len(t, store.records, 2)
	rec := store.records[0]
	assert.Equal(t, archiver.RunID(), rec.RunID)
	assert.Equal(t, 1, rec.SessionID)
	assert.Equal(t, models.FinalizeReasonExpired, rec.Reason)
	require.NotNil(t, rec.EndedAt)
	assert.Equal(t, rec.StartedAt.Add(time.Minute), *rec.EndedAt)
	assert.Equal(t, "John Doe", rec.Members[0].Name)
}

func TestArchiver_PropagatesStoreError(t *testing.T) {
	boom := errors.New("boom")
	archiver := NewArchiver(&memoryStore{err: boom})

	assert.ErrorIs(t, archiver.Publish(context.Background(), finalizedEvent(t, 1)), boom)
}

func TestService_ListArchive(t *testing.T) {
	store := &memoryStore{}
	archiver := NewArchiver(store)
	for i := 1; i <= 3; i++ {
		require.NoError(t, archiver.Publish(context.Background(), finalizedEvent(t, i)))
	}

	r := chi.NewRouter()
	NewService(store).RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/archive?limit=2", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []Record `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 2)
	assert.Equal(t, 3, body.Data[0].SessionID)

	for _, bad := range []string{"0", "abc", "9999"} {
		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/archive?limit="+bad, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}
}
