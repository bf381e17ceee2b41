package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	locerr "github.com/ERRORIK404/Session_Calculator/pkg/local_errors"
	models "github.com/ERRORIK404/Session_Calculator/pkg/db_models"
)

type sessionRow struct {
	Key       string        `db:"session_key"`
	UserID    sql.NullInt64 `db:"user_id"`
	CreatedAt time.Time     `db:"created_at"`
	ExpiresAt time.Time     `db:"expires_at"`
}

func (d *DB) CreateSession(ctx context.Context, s *models.Session) error {
	_, err := d.DB.ExecContext(ctx,
		"INSERT INTO sessions (session_key, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)",
		s.Key, s.UserID, s.CreatedAt.UTC(), s.ExpiresAt.UTC(),
	)
	return err
}

// GetSession возвращает только не истекшую сессию
func (d *DB) GetSession(ctx context.Context, key string, now time.Time) (*models.Session, error) {
	var row sessionRow
	err := d.DB.GetContext(ctx, &row,
		"SELECT session_key, user_id, created_at, expires_at FROM sessions WHERE session_key = ? AND expires_at > ?",
		key, now.UTC(),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, locerr.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &models.Session{Key: row.Key, UserID: row.UserID, CreatedAt: row.CreatedAt, ExpiresAt: row.ExpiresAt}, nil
}

func (d *DB) TouchSession(ctx context.Context, key string, expiresAt time.Time) error {
	_, err := d.DB.ExecContext(ctx,
		"UPDATE sessions SET expires_at = ? WHERE session_key = ?",
		expiresAt.UTC(), key,
	)
	return err
}

func (d *DB) DeleteSession(ctx context.Context, key string) error {
	_, err := d.DB.ExecContext(ctx, "DELETE FROM sessions WHERE session_key = ?", key)
	return err
}

func (d *DB) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := d.DB.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at <= ?", now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
