package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }

type fakeConn bool

func (f fakeConn) IsConnected() bool { return bool(f) }

type fakeSessions bool

func (f fakeSessions) IsActive() bool { return bool(f) }

func TestHealthChecker_Healthy(t *testing.T) {
	h := &HealthChecker{
		db:          fakePinger{},
		nats:        fakeConn(true),
		sessions:    fakeSessions(true),
		connections: func() int { return 2 },
	}

	status := h.Check(context.Background())
	assert.True(t, status.Healthy)
	require.NotNil(t, status.DatabaseConnected)
	assert.True(t, *status.DatabaseConnected)
	require.NotNil(t, status.NATSConnected)
	assert.True(t, *status.NATSConnected)
	assert.True(t, status.SessionActive)
	assert.Equal(t, 2, status.Connections)
	assert.Empty(t, status.Errors)
}

func TestHealthChecker_UnhealthyBackends(t *testing.T) {
	h := &HealthChecker{db: fakePinger{err: errors.New("refused")}, nats: fakeConn(false)}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body struct {
		Data HealthStatus `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Data.Healthy)
	assert.Len(t, body.Data.Errors, 2)
}

func TestHealthChecker_UnconfiguredBackendsOmitted(t *testing.T) {
	status := (&HealthChecker{}).Check(context.Background())
	assert.True(t, status.Healthy)
	assert.Nil(t, status.DatabaseConnected)
	assert.Nil(t, status.NATSConnected)
}
