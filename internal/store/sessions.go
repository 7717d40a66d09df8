package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/openrails/openrails-sub024/internal/command"
)

// ErrSessionNotFound is returned when no session has the requested id.
var ErrSessionNotFound = errors.New("session not found")

// IDGenerator generates session ids.
// Implemented by UUIDv7Generator (production) and testutil.SequentialIDs (tests).
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 session ids.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Session describes one archived session.
type Session struct {
	ID           string
	Name         string
	CreatedAt    time.Time
	CommandCount int
	// ReplayEndsAt is the latest command time. Meaningless when
	// CommandCount is zero.
	ReplayEndsAt float64
}

// SaveSession archives cmds, in the given order, as a new session and
// returns its id. The whole session is written in one transaction.
func (s *Store) SaveSession(ctx context.Context, name string, cmds []command.Command) (string, error) {
	id := s.ids.Generate()

	var endsAt sql.NullFloat64
	for i, c := range cmds {
		if i == 0 || c.Time() > endsAt.Float64 {
			endsAt = sql.NullFloat64{Float64: c.Time(), Valid: true}
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("save session: begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (id, name, created_at, command_count, replay_ends_at)
		VALUES (?, ?, ?, ?, ?)
	`, id, name, s.nowFn().UnixMilli(), len(cmds), endsAt)
	if err != nil {
		return "", fmt.Errorf("save session %s: %w", id, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO commands (session_id, seq, kind, shape, time, payload)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("save session %s: prepare: %w", id, err)
	}
	defer stmt.Close()

	for i, c := range cmds {
		payload, err := marshalCommand(c)
		if err != nil {
			return "", fmt.Errorf("save session %s: command %d: %w", id, i, err)
		}
		if _, err := stmt.ExecContext(ctx, id, i+1, int64(c.Kind()), int64(c.Shape()), c.Time(), payload); err != nil {
			return "", fmt.Errorf("save session %s: command %d: %w", id, i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("save session %s: commit: %w", id, err)
	}
	return id, nil
}

// GetSession returns the metadata of one session.
func (s *Store) GetSession(ctx context.Context, id string) (Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, created_at, command_count, replay_ends_at
		FROM sessions
		WHERE id = ?
	`, id)

	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err != nil {
		return Session{}, fmt.Errorf("get session %s: %w", id, err)
	}
	return sess, nil
}

// LoadSession returns a session and its commands in saved order.
func (s *Store) LoadSession(ctx context.Context, id string) (Session, []command.Command, error) {
	sess, err := s.GetSession(ctx, id)
	if err != nil {
		return Session{}, nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, shape, time, payload
		FROM commands
		WHERE session_id = ?
		ORDER BY seq ASC
	`, id)
	if err != nil {
		return Session{}, nil, fmt.Errorf("load session %s: %w", id, err)
	}
	defer rows.Close()

	cmds := make([]command.Command, 0, sess.CommandCount)
	for rows.Next() {
		var (
			kind, shape int64
			t           float64
			payload     []byte
		)
		if err := rows.Scan(&kind, &shape, &t, &payload); err != nil {
			return Session{}, nil, fmt.Errorf("load session %s: scan: %w", id, err)
		}
		c, err := unmarshalCommand(payload, kind, shape, t)
		if err != nil {
			return Session{}, nil, fmt.Errorf("load session %s: command %d: %w", id, len(cmds), err)
		}
		cmds = append(cmds, c)
	}
	if err := rows.Err(); err != nil {
		return Session{}, nil, fmt.Errorf("load session %s: %w", id, err)
	}
	return sess, cmds, nil
}

// ListSessions returns every session, oldest first.
func (s *Store) ListSessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, created_at, command_count, replay_ends_at
		FROM sessions
		ORDER BY created_at ASC, id ASC COLLATE BINARY
	`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("list sessions: %w", err)
		}
		out = append(out, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return out, nil
}

// DeleteSession removes a session and its commands.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(r rowScanner) (Session, error) {
	var (
		sess      Session
		createdAt int64
		endsAt    sql.NullFloat64
	)
	if err := r.Scan(&sess.ID, &sess.Name, &createdAt, &sess.CommandCount, &endsAt); err != nil {
		return Session{}, err
	}
	sess.CreatedAt = time.UnixMilli(createdAt).UTC()
	sess.ReplayEndsAt = endsAt.Float64
	return sess, nil
}

// KindCounts returns how many commands of each kind a session holds.
// Kinds with no commands are absent.
func (s *Store) KindCounts(ctx context.Context, id string) (map[command.Kind]int, error) {
	if _, err := s.GetSession(ctx, id); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, COUNT(*)
		FROM commands
		WHERE session_id = ?
		GROUP BY kind
	`, id)
	if err != nil {
		return nil, fmt.Errorf("count kinds %s: %w", id, err)
	}
	defer rows.Close()

	counts := make(map[command.Kind]int)
	for rows.Next() {
		var kind int64
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("count kinds %s: %w", id, err)
		}
		counts[command.Kind(kind)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("count kinds %s: %w", id, err)
	}
	return counts, nil
}
