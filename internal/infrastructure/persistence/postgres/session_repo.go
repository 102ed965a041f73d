package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/schoolsby-hub/daybook-bot/internal/domain/session"
	"github.com/schoolsby-hub/daybook-bot/internal/domain/shared"
)

// SessionRepository is a PostgreSQL-backed session.Store. Records are
// kept as JSONB rows so the schema survives record shape changes.
type SessionRepository struct {
	conn *Connection
}

var _ session.Store = (*SessionRepository)(nil)

// NewSessionRepository creates a session repository.
func NewSessionRepository(conn *Connection) *SessionRepository {
	return &SessionRepository{conn: conn}
}

// Get returns the record for a key.
func (r *SessionRepository) Get(ctx context.Context, key session.Key) (*session.Record, error) {
	var raw []byte
	err := r.conn.QueryRow(ctx,
		`SELECT record FROM sessions WHERE key = $1`,
		string(key),
	).Scan(&raw)
	if IsNoRows(err) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: get session %s: %w", key, err)
	}

	var record session.Record
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("postgres: decode session %s: %w", key, err)
	}
	return &record, nil
}

// Put stores a record under a key, replacing any previous one.
func (r *SessionRepository) Put(ctx context.Context, key session.Key, record *session.Record) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("postgres: encode session %s: %w", key, err)
	}

	_, err = r.conn.Exec(ctx, `
		INSERT INTO sessions (key, record, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE
		SET record = EXCLUDED.record, updated_at = NOW()`,
		string(key), raw,
	)
	if err != nil {
		return fmt.Errorf("postgres: put session %s: %w", key, err)
	}
	return nil
}

// Delete removes a key. Missing keys are not an error.
func (r *SessionRepository) Delete(ctx context.Context, key session.Key) error {
	_, err := r.conn.Exec(ctx, `DELETE FROM sessions WHERE key = $1`, string(key))
	if err != nil {
		return fmt.Errorf("postgres: delete session %s: %w", key, err)
	}
	return nil
}

// Copy duplicates the record under from to the key to, by value.
func (r *SessionRepository) Copy(ctx context.Context, from, to session.Key) error {
	tag, err := r.conn.Exec(ctx, `
		INSERT INTO sessions (key, record, updated_at)
		SELECT $2, record, NOW() FROM sessions WHERE key = $1
		ON CONFLICT (key) DO UPDATE
		SET record = EXCLUDED.record, updated_at = NOW()`,
		string(from), string(to),
	)
	if err != nil {
		return fmt.Errorf("postgres: copy session %s to %s: %w", from, to, err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Keys lists every stored session key.
func (r *SessionRepository) Keys(ctx context.Context) ([]session.Key, error) {
	rows, err := r.conn.Query(ctx, `SELECT key FROM sessions ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list session keys: %w", err)
	}
	defer rows.Close()

	var keys []session.Key
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("postgres: scan session key: %w", err)
		}
		keys = append(keys, session.Key(key))
	}
	return keys, rows.Err()
}
