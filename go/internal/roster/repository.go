package roster

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mcdev12/draftroom/go/internal/models"
	"github.com/mcdev12/draftroom/go/internal/sqlutil"
)

// Repository is the roster data source. Both the in-memory store and the Postgres store honor the
// same contract, so the draft session manager behaves identically against either.
type Repository interface {
	Add(ctx context.Context, member models.Member) (models.Member, error)
	Update(ctx context.Context, id int, update models.MemberUpdate) (models.Member, error)
	Remove(ctx context.Context, id int) error
	List(ctx context.Context) ([]models.Member, error)
}

const createMembersTable = `
CREATE TABLE IF NOT EXISTS roster_members (
	id          SERIAL PRIMARY KEY,
	name        TEXT        NOT NULL,
	score       INTEGER     NOT NULL DEFAULT 0,
	member_rank INTEGER     NOT NULL DEFAULT 0,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const (
	insertMember = `INSERT INTO roster_members (name, score, member_rank)
VALUES ($1, $2, $3)
RETURNING id, name, score, member_rank`
	selectMemberForUpdate = `SELECT id, name, score, member_rank FROM roster_members WHERE id = $1 FOR UPDATE`
	updateMember          = `UPDATE roster_members SET name = $2, score = $3, member_rank = $4 WHERE id = $1`
	deleteMember          = `DELETE FROM roster_members WHERE id = $1`
	listMembers           = `SELECT id, name, score, member_rank FROM roster_members ORDER BY id`
)

type queries struct {
	db sqlutil.DBTX
}

func (q *queries) insert(ctx context.Context, m models.Member) (models.Member, error) {
	var out models.Member
	err := q.db.QueryRowContext(ctx, insertMember, m.Name, m.Score, m.Rank).
		Scan(&out.ID, &out.Name, &out.Score, &out.Rank)
	return out, err
}

func (q *queries) getForUpdate(ctx context.Context, id int) (models.Member, error) {
	var out models.Member
	err := q.db.QueryRowContext(ctx, selectMemberForUpdate, id).
		Scan(&out.ID, &out.Name, &out.Score, &out.Rank)
	return out, err
}

func (q *queries) update(ctx context.Context, m models.Member) error {
	_, err := q.db.ExecContext(ctx, updateMember, m.ID, m.Name, m.Score, m.Rank)
	return err
}

// PostgresRepository stores the roster in the roster_members table.
type PostgresRepository struct {
	db *sql.DB
	q  *queries
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db: db,
		q:  &queries{db: db},
	}
}

// EnsureSchema creates the roster table when it does not exist yet.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createMembersTable); err != nil {
		return fmt.Errorf("failed to create roster_members table: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Add(ctx context.Context, member models.Member) (models.Member, error) {
	out, err := r.q.insert(ctx, member)
	if err != nil {
		return models.Member{}, fmt.Errorf("failed to create roster member: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id int, update models.MemberUpdate) (models.Member, error) {
	var out models.Member
	err := sqlutil.Run(ctx, r.db, func(tx *sql.Tx) *queries { return &queries{db: tx} }, func(q *queries) error {
		current, err := q.getForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("member %d: %w", id, models.ErrNotFound)
			}
			return err
		}
		out = update.Apply(current)
		return q.update(ctx, out)
	})
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.Member{}, err
		}
		return models.Member{}, fmt.Errorf("failed to update roster member: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Remove(ctx context.Context, id int) error {
	if _, err := r.db.ExecContext(ctx, deleteMember, id); err != nil {
		return fmt.Errorf("failed to delete roster member: %w", err)
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]models.Member, error) {
	rows, err := r.db.QueryContext(ctx, listMembers)
	if err != nil {
		return nil, fmt.Errorf("failed to list roster members: %w", err)
	}
	defer rows.Close()

	members := []models.Member{}
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.ID, &m.Name, &m.Score, &m.Rank); err != nil {
			return nil, fmt.Errorf("failed to scan roster member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list roster members: %w", err)
	}
	return members, nil
}
