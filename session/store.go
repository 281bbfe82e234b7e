package session

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
)

// Store is a durable key-value store with one namespace per client device.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db}
}

func (s *Store) Get(ctx context.Context, client, key string) (value string, ok bool, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT value FROM setting
		WHERE client_id = ?
			AND name = ?`,
		client,
		key,
	).Scan(&value)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", false, nil
	case err != nil:
		return "", false, errors.Wrapf(err, "setting %q", key)
	}
	return value, true, nil
}

// Set stores value under key; the last write wins.
func (s *Store) Set(ctx context.Context, client, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO setting (client_id, name, value) VALUES (?, ?, ?)
		ON CONFLICT (client_id, name) DO UPDATE
		SET value = excluded.value,
			updated = CURRENT_TIMESTAMP`,
		client,
		key,
		value,
	)
	return errors.Wrapf(err, "store setting %q", key)
}

func (s *Store) Delete(ctx context.Context, client, key string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM setting
		WHERE client_id = ?
			AND name = ?`,
		client,
		key,
	)
	return errors.Wrapf(err, "delete setting %q", key)
}
