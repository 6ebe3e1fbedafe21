package roster

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/mcdev12/draftroom/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticGuard struct{ active bool }

func (g *staticGuard) IsActive() bool { return g.active }

func newTestRouter(guard SessionGuard) http.Handler {
	r := chi.NewRouter()
	NewService(NewApp(NewMemoryRepository(seedMembers())), guard).RegisterRoutes(r)
	return r
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var body struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Data
}

func TestService_CRUD(t *testing.T) {
	h := newTestRouter(&staticGuard{})

	rec := doRequest(t, h, http.MethodPost, "/api/roster", `{"name":"Rey","score":4,"rank":9}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, 4, decodeData[models.Member](t, rec).ID)

	rec = doRequest(t, h, http.MethodPatch, "/api/roster/4", `{"score":12}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, models.Member{ID: 4, Name: "Rey", Score: 12, Rank: 9}, decodeData[models.Member](t, rec))

	rec = doRequest(t, h, http.MethodDelete, "/api/roster/1", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/api/roster", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int{2, 3, 4}, memberIDs(decodeData[[]models.Member](t, rec)))
}

func TestService_ErrorMapping(t *testing.T) {
	h := newTestRouter(nil)

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{name: "empty name", method: http.MethodPost, path: "/api/roster", body: `{"name":""}`, want: http.StatusBadRequest},
		{name: "malformed body", method: http.MethodPost, path: "/api/roster", body: `{"name":`, want: http.StatusBadRequest},
		{name: "bad id", method: http.MethodPatch, path: "/api/roster/abc", body: `{}`, want: http.StatusBadRequest},
		{name: "unknown id", method: http.MethodPatch, path: "/api/roster/77", body: `{"score":1}`, want: http.StatusNotFound},
		{name: "delete unknown id", method: http.MethodDelete, path: "/api/roster/77", want: http.StatusNoContent},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, h, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.want, rec.Code, rec.Body.String())
		})
	}
}

func TestService_LockedWhileSessionActive(t *testing.T) {
	guard := &staticGuard{active: true}
	h := newTestRouter(guard)

	assert.Equal(t, http.StatusConflict, doRequest(t, h, http.MethodPost, "/api/roster", `{"name":"Rey"}`).Code)
	assert.Equal(t, http.StatusConflict, doRequest(t, h, http.MethodPatch, "/api/roster/1", `{"score":1}`).Code)
	assert.Equal(t, http.StatusConflict, doRequest(t, h, http.MethodDelete, "/api/roster/1", "").Code)
	assert.Equal(t, http.StatusOK, doRequest(t, h, http.MethodGet, "/api/roster", "").Code)

	guard.active = false
	assert.Equal(t, http.StatusNoContent, doRequest(t, h, http.MethodDelete, "/api/roster/1", "").Code)
}
