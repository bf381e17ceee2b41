package db_models

import (
	"database/sql"
	"time"
)

type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

type Session struct {
	Key       string
	UserID    sql.NullInt64
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (s *Session) Authenticated() bool {
	return s != nil && s.UserID.Valid
}

type Operator string

const (
	OpAdd Operator = "+"
	OpSub Operator = "-"
	OpMul Operator = "*"
	OpDiv Operator = "/"
)

func (o Operator) Valid() bool {
	switch o {
	case OpAdd, OpSub, OpMul, OpDiv:
		return true
	}
	return false
}

// Owner - владелец записи: либо пользователь, либо гостевая сессия, но не оба сразу.
// Реализации только UserOwner и GuestOwner.
type Owner interface {
	columns() (userID sql.NullInt64, sessionKey sql.NullString)
}

type UserOwner struct {
	UserID int64
}

type GuestOwner struct {
	SessionKey string
}

func (o UserOwner) columns() (sql.NullInt64, sql.NullString) {
	return sql.NullInt64{Int64: o.UserID, Valid: true}, sql.NullString{}
}

func (o GuestOwner) columns() (sql.NullInt64, sql.NullString) {
	return sql.NullInt64{}, sql.NullString{String: o.SessionKey, Valid: true}
}

// OwnerColumns раскладывает владельца на колонки user_id и session_key
func OwnerColumns(o Owner) (sql.NullInt64, sql.NullString) {
	return o.columns()
}

// OwnerFromColumns собирает владельца обратно. ok == false, если строка нарушает инвариант.
func OwnerFromColumns(userID sql.NullInt64, sessionKey sql.NullString) (Owner, bool) {
	switch {
	case userID.Valid && !sessionKey.Valid:
		return UserOwner{UserID: userID.Int64}, true
	case !userID.Valid && sessionKey.Valid && sessionKey.String != "":
		return GuestOwner{SessionKey: sessionKey.String}, true
	default:
		return nil, false
	}
}

type CalculationRecord struct {
	ID        int64
	Owner     Owner
	Operand1  float64
	Operand2  float64
	Operator  Operator
	Result    float64
	Note      string
	CreatedAt time.Time
}
