package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	models "github.com/ERRORIK404/Session_Calculator/pkg/db_models"
)

// Records - запросы к таблице calculations, работают и с *sqlx.DB, и с *sqlx.Tx
type Records struct {
	q sqlx.ExtContext
}

type recordRow struct {
	ID         int64          `db:"id"`
	UserID     sql.NullInt64  `db:"user_id"`
	SessionKey sql.NullString `db:"session_key"`
	Operand1   float64        `db:"operand1"`
	Operand2   float64        `db:"operand2"`
	Operator   string         `db:"operator"`
	Result     float64        `db:"result"`
	Note       string         `db:"note"`
	CreatedAt  time.Time      `db:"created_at"`
}

const recordColumns = "id, user_id, session_key, operand1, operand2, operator, result, note, created_at"

// ownerFilter возвращает условие WHERE и аргумент для владельца
func ownerFilter(owner models.Owner) (string, interface{}) {
	userID, sessionKey := models.OwnerColumns(owner)
	if userID.Valid {
		return "user_id = ?", userID.Int64
	}
	return "session_key = ?", sessionKey.String
}

func (r *Records) AddRecord(ctx context.Context, rec *models.CalculationRecord) error {
	userID, sessionKey := models.OwnerColumns(rec.Owner)
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	res, err := r.q.ExecContext(ctx,
		"INSERT INTO calculations (user_id, session_key, operand1, operand2, operator, result, note, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		userID, sessionKey, rec.Operand1, rec.Operand2, string(rec.Operator), rec.Result, rec.Note, rec.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert calculation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rec.ID = id
	return nil
}

func (r *Records) CountRecords(ctx context.Context, owner models.Owner) (int, error) {
	where, arg := ownerFilter(owner)
	var n int
	err := sqlx.GetContext(ctx, r.q, &n, "SELECT COUNT(*) FROM calculations WHERE "+where, arg)
	return n, err
}

// CountNotedRecords считает записи с непустой заметкой
func (r *Records) CountNotedRecords(ctx context.Context, owner models.Owner) (int, error) {
	where, arg := ownerFilter(owner)
	var n int
	err := sqlx.GetContext(ctx, r.q, &n, "SELECT COUNT(*) FROM calculations WHERE "+where+" AND note <> ''", arg)
	return n, err
}

// ListRecords возвращает записи от новых к старым. limit <= 0 - без ограничения.
func (r *Records) ListRecords(ctx context.Context, owner models.Owner, limit int) ([]models.CalculationRecord, error) {
	where, arg := ownerFilter(owner)
	query := "SELECT " + recordColumns + " FROM calculations WHERE " + where + " ORDER BY created_at DESC, id DESC"
	args := []interface{}{arg}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	var rows []recordRow
	if err := sqlx.SelectContext(ctx, r.q, &rows, query, args...); err != nil {
		return nil, err
	}

	history := make([]models.CalculationRecord, 0, len(rows))
	for _, row := range rows {
		owner, ok := models.OwnerFromColumns(row.UserID, row.SessionKey)
		if !ok {
			return nil, fmt.Errorf("calculation %d has invalid owner", row.ID)
		}
		history = append(history, models.CalculationRecord{
			ID:        row.ID,
			Owner:     owner,
			Operand1:  row.Operand1,
			Operand2:  row.Operand2,
			Operator:  models.Operator(row.Operator),
			Result:    row.Result,
			Note:      row.Note,
			CreatedAt: row.CreatedAt,
		})
	}
	return history, nil
}

// DeleteRecord удаляет запись только у этого пользователя. false - записи нет или она чужая.
func (r *Records) DeleteRecord(ctx context.Context, userID, id int64) (bool, error) {
	res, err := r.q.ExecContext(ctx, "DELETE FROM calculations WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *Records) ClearRecords(ctx context.Context, userID int64) (int64, error) {
	res, err := r.q.ExecContext(ctx, "DELETE FROM calculations WHERE user_id = ?", userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
