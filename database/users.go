package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mattn/go-sqlite3"

	locerr "github.com/ERRORIK404/Session_Calculator/pkg/local_errors"
	models "github.com/ERRORIK404/Session_Calculator/pkg/db_models"
)

type userRow struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

func (r userRow) model() *models.User {
	return &models.User{ID: r.ID, Username: r.Username, PasswordHash: r.PasswordHash, CreatedAt: r.CreatedAt}
}

func (d *DB) CreateUser(ctx context.Context, username, hashpassword string) (*models.User, error) {
	now := time.Now().UTC()
	res, err := d.DB.ExecContext(ctx,
		"INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?)",
		username, hashpassword, now,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return nil, locerr.ErrUsernameTaken
		}
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &models.User{ID: id, Username: username, PasswordHash: hashpassword, CreatedAt: now}, nil
}

func (d *DB) GetUser(ctx context.Context, username string) (*models.User, error) {
	var row userRow
	err := d.DB.GetContext(ctx, &row,
		"SELECT id, username, password_hash, created_at FROM users WHERE username = ?",
		username,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, locerr.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.model(), nil
}

func (d *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var row userRow
	err := d.DB.GetContext(ctx, &row,
		"SELECT id, username, password_hash, created_at FROM users WHERE id = ?",
		id,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, locerr.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.model(), nil
}
