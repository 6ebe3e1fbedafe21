package roster

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/mcdev12/draftroom/go/internal/apiutil"
	"github.com/mcdev12/draftroom/go/internal/models"
)

// SessionGuard reports whether a draft session is running.
type SessionGuard interface {
	IsActive() bool
}

// Service exposes the roster over HTTP. Mutations are refused while a draft session is active;
// that policy belongs to this layer, not to the App.
type Service struct {
	app   *App
	guard SessionGuard
}

// NewService creates a new roster Service. guard may be nil.
func NewService(app *App, guard SessionGuard) *Service {
	return &Service{app: app, guard: guard}
}

// RegisterRoutes mounts the roster endpoints.
func (s *Service) RegisterRoutes(r chi.Router) {
	r.Route("/api/roster", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleAdd)
		r.Patch("/{id}", s.handleUpdate)
		r.Delete("/{id}", s.handleDelete)
	})
}

func (s *Service) handleList(w http.ResponseWriter, r *http.Request) {
	members, err := s.app.ListMembers(r.Context())
	if err != nil {
		apiutil.WriteError(w, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, members)
}

func (s *Service) handleAdd(w http.ResponseWriter, r *http.Request) {
	if err := s.checkEditable(); err != nil {
		apiutil.WriteError(w, err)
		return
	}

	var req AddMemberRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, err)
		return
	}

	member, err := s.app.AddMember(r.Context(), req)
	if err != nil {
		apiutil.WriteError(w, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusCreated, member)
}

func (s *Service) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if err := s.checkEditable(); err != nil {
		apiutil.WriteError(w, err)
		return
	}

	id, err := parseMemberID(r)
	if err != nil {
		apiutil.WriteError(w, err)
		return
	}

	var req UpdateMemberRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, err)
		return
	}

	member, err := s.app.UpdateMember(r.Context(), id, req)
	if err != nil {
		apiutil.WriteError(w, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, member)
}

func (s *Service) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.checkEditable(); err != nil {
		apiutil.WriteError(w, err)
		return
	}

	id, err := parseMemberID(r)
	if err != nil {
		apiutil.WriteError(w, err)
		return
	}

	if err := s.app.RemoveMember(r.Context(), id); err != nil {
		apiutil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) checkEditable() error {
	if s.guard != nil && s.guard.IsActive() {
		return fmt.Errorf("%w: roster is locked while a draft session is active", models.ErrInvalidState)
	}
	return nil
}

func parseMemberID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid member id %q", models.ErrValidation, raw)
	}
	return id, nil
}
