package localerrors

import (
	"errors"
	"sort"
	"strings"
)

// Ошибки валидации вычисления
var (
	ErrInvalidNumber       = errors.New("invalid number input")
	ErrInvalidOperator     = errors.New("invalid operator")
	ErrDivisionByZero      = errors.New("division by zero not allowed")
	ErrResultOutOfRange    = errors.New("result out of range")
	ErrIncorrectExpression = errors.New("incorrect expression")
	ErrBracketMismatch     = errors.New("bracket mismatch")
	ErrInvalidCharacter    = errors.New("invalid character")
	ErrEmptyExpression     = errors.New("empty expression")
)

// Ограничения для гостей
var (
	ErrGuestCalculationLimit = errors.New("guest calculation limit reached")
	ErrGuestNoteLimit        = errors.New("guest note limit reached")
)

// Авторизация и доступ
var (
	ErrAuthenticationRequired = errors.New("authentication credentials were not provided")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrUsernameTaken          = errors.New("a user with that username already exists")
	ErrCSRFFailed             = errors.New("CSRF token missing or incorrect")
	ErrInvalidToken           = errors.New("invalid token")
	ErrSessionNotFound        = errors.New("session not found")
	ErrNotFound               = errors.New("history item not found")
	ErrUserNotFound           = errors.New("user not found")
)

// FieldErrors хранит ошибки по полям запроса, например для регистрации
type FieldErrors map[string][]string

func (f FieldErrors) Add(field, message string) {
	f[field] = append(f[field], message)
}

func (f FieldErrors) Empty() bool {
	return len(f) == 0
}

func (f FieldErrors) Error() string {
	fields := make([]string, 0, len(f))
	for field := range f {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+strings.Join(f[field], " "))
	}
	return "invalid fields: " + strings.Join(parts, "; ")
}

// IsQuota сообщает, что ошибка связана с гостевыми лимитами
func IsQuota(err error) bool {
	return errors.Is(err, ErrGuestCalculationLimit) || errors.Is(err, ErrGuestNoteLimit)
}

// IsValidation сообщает, что запрос можно исправить на стороне клиента
func IsValidation(err error) bool {
	var fe FieldErrors
	return errors.Is(err, ErrInvalidNumber) ||
		errors.Is(err, ErrInvalidOperator) ||
		errors.Is(err, ErrDivisionByZero) ||
		errors.Is(err, ErrResultOutOfRange) ||
		errors.Is(err, ErrUsernameTaken) ||
		errors.As(err, &fe)
}
