package database

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schema string

type DB struct {
	DB *sqlx.DB
}

// InitDB открывает sqlite и применяет схему.
// _txlock=immediate: транзакция сразу берет блокировку на запись, поэтому
// проверка гостевых лимитов и вставка внутри одной транзакции не гоняются.
func InitDB(path string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_txlock=immediate&_busy_timeout=5000", path)
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return NewDB(db), nil
}

func NewDB(db *sqlx.DB) *DB {
	return &DB{DB: db}
}

func (d *DB) Close() error {
	return d.DB.Close()
}

// Records возвращает запросы к истории вне транзакции
func (d *DB) Records() *Records {
	return &Records{q: d.DB}
}

// InTx выполняет fn в транзакции. Если fn вернула ошибку, ничего не записывается.
func (d *DB) InTx(ctx context.Context, fn func(r *Records) error) error {
	tx, err := d.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	if err := fn(&Records{q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
