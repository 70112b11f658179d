package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/monbattle/internal/game/battle"
)

// ErrSnapshotNotFound is returned when no snapshot exists for a session.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// ErrInvalidSessionID is returned when a session id is not a UUID.
var ErrInvalidSessionID = errors.New("session id must be a UUID")

// SnapshotSummary is the listing view of a stored snapshot.
type SnapshotSummary struct {
	SessionID string
	Wave      int
	Turn      int
	Outcome   string
	UpdatedAt time.Time
}

// SnapshotRepository persists battle snapshots as JSONB, one row per session.
type SnapshotRepository struct {
	db *pgxpool.Pool
}

// NewSnapshotRepository creates a SnapshotRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewSnapshotRepository(db *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Save inserts s or replaces the stored snapshot for s.SessionID.
//
// Precondition: s.SessionID must be a UUID.
// Postcondition: Load(s.SessionID) returns a snapshot equal to s.
func (r *SnapshotRepository) Save(ctx context.Context, s battle.Snapshot) error {
	if _, err := uuid.Parse(s.SessionID); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidSessionID, s.SessionID)
	}
	state, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO battle_snapshots (session_id, wave, turn, outcome, state)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (session_id) DO UPDATE
		SET wave = EXCLUDED.wave,
		    turn = EXCLUDED.turn,
		    outcome = EXCLUDED.outcome,
		    state = EXCLUDED.state,
		    updated_at = NOW()`,
		s.SessionID, s.Wave, s.Turn, s.Outcome.String(), state,
	)
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

// Load returns the stored snapshot for sessionID.
//
// Postcondition: Returns ErrSnapshotNotFound when no row exists.
func (r *SnapshotRepository) Load(ctx context.Context, sessionID string) (battle.Snapshot, error) {
	if _, err := uuid.Parse(sessionID); err != nil {
		return battle.Snapshot{}, fmt.Errorf("%w: %q", ErrInvalidSessionID, sessionID)
	}
	var state []byte
	err := r.db.QueryRow(ctx,
		`SELECT state FROM battle_snapshots WHERE session_id = $1`, sessionID,
	).Scan(&state)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return battle.Snapshot{}, ErrSnapshotNotFound
		}
		return battle.Snapshot{}, fmt.Errorf("loading snapshot: %w", err)
	}
	var s battle.Snapshot
	if err := json.Unmarshal(state, &s); err != nil {
		return battle.Snapshot{}, fmt.Errorf("decoding snapshot %s: %w", sessionID, err)
	}
	return s, nil
}

// List returns up to limit snapshots, most recently saved first.
//
// Precondition: limit > 0.
func (r *SnapshotRepository) List(ctx context.Context, limit int) ([]SnapshotSummary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT session_id::text, wave, turn, outcome, updated_at
		FROM battle_snapshots
		ORDER BY updated_at DESC, session_id
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var out []SnapshotSummary
	for rows.Next() {
		var s SnapshotSummary
		if err := rows.Scan(&s.SessionID, &s.Wave, &s.Turn, &s.Outcome, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Delete removes the snapshot for sessionID.
//
// Postcondition: Returns ErrSnapshotNotFound when no row was deleted.
func (r *SnapshotRepository) Delete(ctx context.Context, sessionID string) error {
	if _, err := uuid.Parse(sessionID); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidSessionID, sessionID)
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM battle_snapshots WHERE session_id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("deleting snapshot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSnapshotNotFound
	}
	return nil
}
