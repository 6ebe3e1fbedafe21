package models

import (
	"time"
)

// DraftStatus is the display status of a draft session.
type DraftStatus string

const (
	DraftStatusActive    DraftStatus = "Active"
	DraftStatusCompleted DraftStatus = "Completed"
)

// FinalizeReason records why a session left the active state.
type FinalizeReason string

const (
	FinalizeReasonExpired FinalizeReason = "EXPIRED"
	FinalizeReasonStopped FinalizeReason = "STOPPED"
)

// DraftSession is one timed freeze window over the roster.
// EndTime stays nil while the session is active. Members is nil (JSON null) until finalization
// and non-nil afterwards, even for an empty roster.
type DraftSession struct {
	ID        int        `json:"id"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	IsActive  bool       `json:"is_active"`
	Members   []Member   `json:"members"`
}

// Status reports Active or Completed.
func (s DraftSession) Status() DraftStatus {
	if s.IsActive {
		return DraftStatusActive
	}
	return DraftStatusCompleted
}

// Clone returns a copy of the session that shares no memory with s.
func (s DraftSession) Clone() DraftSession {
	out := s
	if s.EndTime != nil {
		end := *s.EndTime
		out.EndTime = &end
	}
	if s.Members != nil {
		out.Members = CloneMembers(s.Members)
	}
	return out
}
