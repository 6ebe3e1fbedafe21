package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mcdev12/draftroom/go/internal/apiutil"
)

type pinger interface {
	PingContext(ctx context.Context) error
}

type connectedChecker interface {
	IsConnected() bool
}

type activeChecker interface {
	IsActive() bool
}

type HealthStatus struct {
	Healthy           bool     `json:"healthy"`
	DatabaseConnected *bool    `json:"database_connected,omitempty"`
	NATSConnected     *bool    `json:"nats_connected,omitempty"`
	SessionActive     bool     `json:"session_active"`
	Connections       int      `json:"ws_connections"`
	Errors            []string `json:"errors"`
}

// HealthChecker reports on the optional backends. A nil db or nats means that backend is not configured.
type HealthChecker struct {
	db          pinger
	nats        connectedChecker
	sessions    activeChecker
	connections func() int
}

func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Healthy: true,
		Errors:  []string{},
	}

	if h.db != nil {
		connected := true
		if err := h.db.PingContext(ctx); err != nil {
			connected = false
			status.Healthy = false
			status.Errors = append(status.Errors, fmt.Sprintf("database ping failed: %v", err))
		}
		status.DatabaseConnected = &connected
	}

	if h.nats != nil {
		connected := h.nats.IsConnected()
		if !connected {
			status.Healthy = false
			status.Errors = append(status.Errors, "NATS disconnected")
		}
		status.NATSConnected = &connected
	}

	if h.sessions != nil {
		status.SessionActive = h.sessions.IsActive()
	}
	if h.connections != nil {
		status.Connections = h.connections()
	}
	return status
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := h.Check(ctx)
	code := http.StatusOK
	if !status.Healthy {
		code = http.StatusServiceUnavailable
	}
	apiutil.WriteJSON(w, code, status)
}
