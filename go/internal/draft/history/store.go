package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/draftroom/go/internal/models"
	"github.com/mcdev12/draftroom/go/internal/sqlutil"
	"github.com/sqlc-dev/pqtype"
)

// Record is one finalized session as archived. RunID identifies the process that produced it,
// since session ids restart at 1 on every boot.
type Record struct {
	RunID     uuid.UUID             `json:"run_id"`
	SessionID int                   `json:"session_id"`
	StartedAt time.Time             `json:"started_at"`
	EndedAt   *time.Time            `json:"ended_at,omitempty"`
	Reason    models.FinalizeReason `json:"reason"`
	Members   []models.Member       `json:"members"`
}

// Store persists finalized sessions.
type Store interface {
	SaveFinalized(ctx context.Context, record Record) error
	ListFinalized(ctx context.Context, limit int) ([]Record, error)
}

const createSessionsTable = `
CREATE TABLE IF NOT EXISTS draft_sessions (
	id          BIGSERIAL PRIMARY KEY,
	run_id      UUID        NOT NULL,
	session_id  INTEGER     NOT NULL,
	started_at  TIMESTAMPTZ NOT NULL,
	ended_at    TIMESTAMPTZ,
	reason      TEXT        NOT NULL,
	members     JSONB,
	archived_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (run_id, session_id)
)`

const (
	insertSession = `INSERT INTO draft_sessions (run_id, session_id, started_at, ended_at, reason, members)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (run_id, session_id) DO NOTHING`
	listSessions = `SELECT run_id, session_id, started_at, ended_at, reason, members
FROM draft_sessions ORDER BY archived_at DESC, id DESC LIMIT $1`
)

// PostgresStore archives sessions in the draft_sessions table.
type PostgresStore struct {
	db sqlutil.DBTX
}

func NewPostgresStore(db sqlutil.DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the archive table when it does not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createSessionsTable); err != nil {
		return fmt.Errorf("failed to create draft_sessions table: %w", err)
	}
	return nil
}

func (s *PostgresStore) SaveFinalized(ctx context.Context, record Record) error {
	members, err := encodeMembers(record.Members)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, insertSession,
		record.RunID,
		record.SessionID,
		record.StartedAt,
		sqlutil.ToSqlTime(record.EndedAt),
		string(record.Reason),
		members,
	)
	if err != nil {
		return fmt.Errorf("failed to archive session %d: %w", record.SessionID, err)
	}
	return nil
}

func (s *PostgresStore) ListFinalized(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, listSessions, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list archived sessions: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var (
			rec     Record
			endedAt sql.NullTime
			reason  string
			members pqtype.NullRawMessage
		)
		if err := rows.Scan(&rec.RunID, &rec.SessionID, &rec.StartedAt, &endedAt, &reason, &members); err != nil {
			return nil, fmt.Errorf("failed to scan archived session: %w", err)
		}
		rec.EndedAt = sqlutil.FromSqlTime(endedAt)
		rec.Reason = models.FinalizeReason(reason)
		if rec.Members, err = decodeMembers(members); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate archived sessions: %w", err)
	}
	return records, nil
}

func encodeMembers(members []models.Member) (pqtype.NullRawMessage, error) {
	if members == nil {
		return pqtype.NullRawMessage{}, nil
	}
	raw, err := json.Marshal(members)
	if err != nil {
		return pqtype.NullRawMessage{}, fmt.Errorf("failed to marshal members: %w", err)
	}
	return pqtype.NullRawMessage{RawMessage: raw, Valid: true}, nil
}

func decodeMembers(raw pqtype.NullRawMessage) ([]models.Member, error) {
	members := []models.Member{}
	if !raw.Valid {
		return members, nil
	}
	if err := json.Unmarshal(raw.RawMessage, &members); err != nil {
		return nil, fmt.Errorf("failed to unmarshal members: %w", err)
	}
	return members, nil
}
