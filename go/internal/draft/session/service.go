package session

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/mcdev12/draftroom/go/internal/apiutil"
	"github.com/mcdev12/draftroom/go/internal/models"
)

// StartRequest starts a session. DurationSec falls back to the configured default when omitted.
type StartRequest struct {
	DurationSec *int `json:"duration_sec,omitempty"`
}

// SessionView is a session as shown on the admin console.
type SessionView struct {
	models.DraftSession
	Status models.DraftStatus `json:"status"`
}

// TimerView reports the countdown of the running session.
type TimerView struct {
	Active       bool `json:"active"`
	SessionID    int  `json:"session_id,omitempty"`
	RemainingSec int  `json:"remaining_sec"`
}

func newSessionView(s models.DraftSession) SessionView {
	return SessionView{DraftSession: s, Status: s.Status()}
}

// Service exposes the Manager over HTTP.
type Service struct {
	manager            *Manager
	defaultDurationSec int
}

// NewService creates a new draft session Service
func NewService(manager *Manager, defaultDurationSec int) *Service {
	return &Service{manager: manager, defaultDurationSec: defaultDurationSec}
}

// RegisterRoutes mounts the draft session endpoints.
func (s *Service) RegisterRoutes(r chi.Router) {
	r.Route("/api/drafts", func(r chi.Router) {
		r.Get("/", s.handleHistory)
		r.Post("/start", s.handleStart)
		r.Post("/stop", s.handleStop)
		r.Get("/timer", s.handleTimer)
		r.Get("/{id}", s.handleSession)
	})
}

func (s *Service) handleStart(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, err)
		return
	}

	duration := s.defaultDurationSec
	if req.DurationSec != nil {
		duration = *req.DurationSec
	}

	session, err := s.manager.Start(r.Context(), duration)
	if err != nil {
		apiutil.WriteError(w, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusCreated, newSessionView(session))
}

func (s *Service) handleStop(w http.ResponseWriter, r *http.Request) {
	session, err := s.manager.Stop(r.Context())
	if session == nil {
		if err != nil {
			apiutil.WriteError(w, err)
			return
		}
		apiutil.WriteJSON(w, http.StatusOK, nil)
		return
	}
	// the session is finalized even when the roster snapshot failed
	if err != nil {
		apiutil.WriteError(w, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, newSessionView(*session))
}

func (s *Service) handleHistory(w http.ResponseWriter, r *http.Request) {
	history := s.manager.History()
	views := make([]SessionView, 0, len(history))
	for _, session := range history {
		views = append(views, newSessionView(session))
	}
	apiutil.WriteJSON(w, http.StatusOK, views)
}

func (s *Service) handleSession(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		apiutil.WriteError(w, fmt.Errorf("%w: invalid session id %q", models.ErrValidation, raw))
		return
	}

	session, err := s.manager.Session(id)
	if err != nil {
		apiutil.WriteError(w, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, newSessionView(session))
}

func (s *Service) handleTimer(w http.ResponseWriter, r *http.Request) {
	snap := s.manager.Snapshot()
	view := TimerView{RemainingSec: snap.RemainingSec}
	if snap.Active != nil {
		view.Active = true
		view.SessionID = snap.Active.ID
	}
	apiutil.WriteJSON(w, http.StatusOK, view)
}
