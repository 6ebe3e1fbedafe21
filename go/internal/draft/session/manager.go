package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mcdev12/draftroom/go/internal/draft/events"
	"github.com/mcdev12/draftroom/go/internal/models"
	"github.com/rs/zerolog/log"
)

// TickInterval is the countdown resolution.
const TickInterval = time.Second

// RosterSource is read at finalization to snapshot the draft pool.
type RosterSource interface {
	List(ctx context.Context) ([]models.Member, error)
}

// Snapshot is a consistent view of the manager at one instant.
type Snapshot struct {
	Active       *models.DraftSession  `json:"active,omitempty"`
	RemainingSec int                   `json:"remaining_sec"`
	History      []models.DraftSession `json:"history"`
}

// Manager owns the session history and the single active countdown.
// All state lives behind mu; tick callbacks carry the session id they were armed for
// so a callback that races a cancel is dropped. Events are queued under mu in transition
// order and delivered by one flushing goroutine at a time, so consumers never see a tick
// after the finalization that followed it.
type Manager struct {
	roster    RosterSource
	scheduler Scheduler
	publisher events.Publisher

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	history    []models.DraftSession
	active     int // index into history, -1 when idle
	remaining  int
	cancelTick Cancel
	closed     bool

	outbox   []queuedEvent
	flushing bool
}

type queuedEvent struct {
	ctx   context.Context
	event events.Event
}

// NewManager creates a Manager. A nil scheduler uses the real clock; a nil publisher drops events.
func NewManager(roster RosterSource, scheduler Scheduler, publisher events.Publisher) *Manager {
	if scheduler == nil {
		scheduler = NewClockScheduler(nil)
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		roster:    roster,
		scheduler: scheduler,
		publisher: publisher,
		ctx:       ctx,
		cancel:    cancel,
		active:    -1,
	}
}

// Start opens a new session that counts down from durationSeconds.
func (m *Manager) Start(ctx context.Context, durationSeconds int) (models.DraftSession, error) {
	m.mu.Lock()

	if m.closed {
		m.mu.Unlock()
		return models.DraftSession{}, fmt.Errorf("%w: manager is closed", models.ErrInvalidState)
	}
	if durationSeconds <= 0 {
		m.mu.Unlock()
		return models.DraftSession{}, fmt.Errorf("%w: duration must be positive, got %d", models.ErrValidation, durationSeconds)
	}
	if m.active >= 0 {
		id := m.history[m.active].ID
		m.mu.Unlock()
		return models.DraftSession{}, fmt.Errorf("%w: session %d is already active", models.ErrConflict, id)
	}

	session := models.DraftSession{
		ID:        len(m.history) + 1,
		StartTime: m.scheduler.Now(),
		IsActive:  true,
	}
	m.history = append(m.history, session)
	m.active = len(m.history) - 1
	m.remaining = durationSeconds

	sessionID := session.ID
	m.cancelTick = m.scheduler.Every(TickInterval, func() { m.tick(sessionID) })
	m.enqueueLocked(ctx, events.EventTypeSessionStarted, session.ID, session.StartTime, events.SessionStartedPayload{
		SessionID:   session.ID,
		StartedAt:   session.StartTime,
		DurationSec: durationSeconds,
	})
	m.mu.Unlock()

	log.Info().
		Int("session_id", session.ID).
		Int("duration_sec", durationSeconds).
		Time("started_at", session.StartTime).
		Msg("draft session started")

	m.flush()
	return session.Clone(), nil
}

// Stop finalizes the active session immediately. It returns nil when no session is active.
// A roster snapshot failure still finalizes the session with an empty member list and is reported.
func (m *Manager) Stop(ctx context.Context) (*models.DraftSession, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: manager is closed", models.ErrInvalidState)
	}
	if m.active < 0 {
		m.mu.Unlock()
		return nil, nil
	}
	session, err := m.finalizeLocked(ctx, models.FinalizeReasonStopped)
	m.mu.Unlock()

	m.flush()
	return &session, err
}

func (m *Manager) tick(sessionID int) {
	m.mu.Lock()
	if m.closed || m.active < 0 || m.history[m.active].ID != sessionID {
		m.mu.Unlock()
		log.Debug().Int("session_id", sessionID).Msg("dropping stale tick")
		return
	}

	m.remaining--
	now := m.scheduler.Now()
	m.enqueueLocked(m.ctx, events.EventTypeTimerTick, sessionID, now, events.TimerTickPayload{
		SessionID:        sessionID,
		TimeRemainingSec: m.remaining,
		TickedAt:         now,
	})
	if m.remaining <= 0 {
		// the error is logged by finalizeLocked; there is no caller to report it to
		_, _ = m.finalizeLocked(m.ctx, models.FinalizeReasonExpired)
	}
	m.mu.Unlock()

	m.flush()
}

// finalizeLocked is the only way a session leaves the active state. m.mu must be held.
func (m *Manager) finalizeLocked(ctx context.Context, reason models.FinalizeReason) (models.DraftSession, error) {
	if m.cancelTick != nil {
		m.cancelTick()
		m.cancelTick = nil
	}

	members, err := m.roster.List(ctx)
	if err != nil {
		log.Error().Err(err).Int("session_id", m.history[m.active].ID).Msg("roster snapshot failed; finalizing with empty roster")
		members = nil
		err = fmt.Errorf("snapshot roster: %w", err)
	}

	end := m.scheduler.Now()
	session := &m.history[m.active]
	session.EndTime = &end
	session.IsActive = false
	session.Members = models.CloneMembers(members)

	m.active = -1
	m.remaining = 0

	log.Info().
		Int("session_id", session.ID).
		Str("reason", string(reason)).
		Int("members", len(session.Members)).
		Dur("duration", end.Sub(session.StartTime)).
		Msg("draft session finalized")

	out := session.Clone()
	m.enqueueLocked(ctx, events.EventTypeSessionFinalized, out.ID, end, events.SessionFinalizedPayload{
		SessionID: out.ID,
		StartedAt: out.StartTime,
		EndedAt:   end,
		Reason:    reason,
		Members:   models.CloneMembers(out.Members),
	})
	return out, err
}

// RemainingSeconds reports the countdown of the active session, 0 when idle.
func (m *Manager) RemainingSeconds() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.remaining
}

// IsActive reports whether a session is running.
func (m *Manager) IsActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active >= 0
}

// Active returns the running session, if any.
func (m *Manager) Active() (models.DraftSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active < 0 {
		return models.DraftSession{}, false
	}
	return m.history[m.active].Clone(), true
}

// History returns every session in creation order.
func (m *Manager) History() []models.DraftSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.historyLocked()
}

// Session returns the session with the given id.
func (m *Manager) Session(id int) (models.DraftSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id < 1 || id > len(m.history) {
		return models.DraftSession{}, fmt.Errorf("session %d: %w", id, models.ErrNotFound)
	}
	return m.history[id-1].Clone(), nil
}

// Snapshot returns the active session, countdown and history taken under one lock.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{RemainingSec: m.remaining, History: m.historyLocked()}
	if m.active >= 0 {
		active := m.history[m.active].Clone()
		snap.Active = &active
	}
	return snap
}

func (m *Manager) historyLocked() []models.DraftSession {
	out := make([]models.DraftSession, len(m.history))
	for i, s := range m.history {
		out[i] = s.Clone()
	}
	return out
}

// Close cancels the countdown. No tick changes state afterwards and Start is refused.
// An active session is left as it is in the history.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	if m.cancelTick != nil {
		m.cancelTick()
		m.cancelTick = nil
	}
	m.cancel()
	log.Info().Int("sessions", len(m.history)).Msg("draft session manager closed")
}

// enqueueLocked appends an event to the outbox. m.mu must be held.
func (m *Manager) enqueueLocked(ctx context.Context, eventType events.EventType, sessionID int, at time.Time, payload any) {
	event, err := events.NewEvent(eventType, sessionID, at, payload)
	if err != nil {
		log.Error().Err(err).Str("event_type", string(eventType)).Msg("failed to build event")
		return
	}
	m.outbox = append(m.outbox, queuedEvent{ctx: context.WithoutCancel(ctx), event: event})
}

// flush delivers queued events in order. If another call is already flushing, including a
// publisher that calls back into the manager, that call delivers the new events instead.
func (m *Manager) flush() {
	m.mu.Lock()
	if m.flushing {
		m.mu.Unlock()
		return
	}
	m.flushing = true
	for len(m.outbox) > 0 {
		batch := m.outbox
		m.outbox = nil
		m.mu.Unlock()

		for _, q := range batch {
			m.publish(q.ctx, q.event)
		}

		m.mu.Lock()
	}
	m.flushing = false
	m.mu.Unlock()
}

func (m *Manager) publish(ctx context.Context, event events.Event) {
	if err := m.publisher.Publish(ctx, event); err != nil {
		log.Warn().Err(err).
			Str("event_type", string(event.Type)).
			Int("session_id", event.SessionID).
			Msg("failed to publish event")
	}
}
