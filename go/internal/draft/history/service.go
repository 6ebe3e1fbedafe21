package history

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/mcdev12/draftroom/go/internal/apiutil"
	"github.com/mcdev12/draftroom/go/internal/models"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// Service serves the archive of finalized sessions.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) RegisterRoutes(r chi.Router) {
	r.Get("/api/archive", s.handleList)
}

func (s *Service) handleList(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxListLimit {
			apiutil.WriteError(w, fmt.Errorf("%w: limit must be between 1 and %d", models.ErrValidation, maxListLimit))
			return
		}
		limit = n
	}

	records, err := s.store.ListFinalized(r.Context(), limit)
	if err != nil {
		apiutil.WriteError(w, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, records)
}
