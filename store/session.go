package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"rolerag/types"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/patrickmn/go-cache"
)

// SessionStorer is the session ledger: role and filenames fixed at creation,
// history append-only. History is read and written whole; the caller is
// expected to hold the session's lock around AppendTurns.
type SessionStorer interface {
	CreateSession(ctx context.Context, session types.Session) error
	GetSession(ctx context.Context, id uuid.UUID) (*types.Session, error)
	ListSessions(ctx context.Context) ([]types.Session, error)
	GetHistory(ctx context.Context, id uuid.UUID) ([]types.Turn, error)
	AppendTurns(ctx context.Context, id uuid.UUID, turns ...types.Turn) error
}

var _ SessionStorer = (*PostgresStore)(nil)

func (s *PostgresStore) CreateSession(ctx context.Context, session types.Session) error {
	filenames, err := json.Marshal(session.Filenames)
	if err != nil {
		return fmt.Errorf("marshal filenames: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO sessions (id, role, filenames, history, created_at)
		VALUES ($1, $2, $3, '[]', $4)`,
		session.ID, session.Role, filenames, session.CreatedAt,
	)
	return err
}

// GetSession returns session metadata (no history). Metadata is immutable
// after creation, so hits are served from the in-process cache.
func (s *PostgresStore) GetSession(ctx context.Context, id uuid.UUID) (*types.Session, error) {
	if cached, ok := s.metaCache.Get(id.String()); ok {
		session := cached.(types.Session)
		return &session, nil
	}

	var session types.Session
	var filenames []byte
	err := s.pool.QueryRow(ctx,
		"SELECT id, role, filenames, created_at FROM sessions WHERE id = $1", id,
	).Scan(&session.ID, &session.Role, &filenames, &session.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(filenames, &session.Filenames); err != nil {
		return nil, fmt.Errorf("unmarshal filenames: %w", err)
	}

	s.metaCache.Set(id.String(), session, cache.DefaultExpiration)
	return &session, nil
}

func (s *PostgresStore) ListSessions(ctx context.Context) ([]types.Session, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT id, role, filenames, created_at FROM sessions ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []types.Session
	for rows.Next() {
		var session types.Session
		var filenames []byte
		if err := rows.Scan(&session.ID, &session.Role, &filenames, &session.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(filenames, &session.Filenames); err != nil {
			return nil, fmt.Errorf("unmarshal filenames: %w", err)
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func (s *PostgresStore) GetHistory(ctx context.Context, id uuid.UUID) ([]types.Turn, error) {
	var history []byte
	err := s.pool.QueryRow(ctx, "SELECT history FROM sessions WHERE id = $1", id).Scan(&history)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	var turns []types.Turn
	if err := json.Unmarshal(history, &turns); err != nil {
		return nil, fmt.Errorf("unmarshal history: %w", err)
	}
	return turns, nil
}

// AppendTurns reads the full history, appends the turns in order, and writes
// the whole history back.
func (s *PostgresStore) AppendTurns(ctx context.Context, id uuid.UUID, turns ...types.Turn) error {
	history, err := s.GetHistory(ctx, id)
	if err != nil {
		return err
	}

	history = append(history, turns...)
	payload, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	tag, err := s.pool.Exec(ctx, "UPDATE sessions SET history = $2 WHERE id = $1", id, payload)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}
