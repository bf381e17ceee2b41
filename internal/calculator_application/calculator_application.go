package calculator_application

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	db "github.com/ERRORIK404/Session_Calculator/database"
	models "github.com/ERRORIK404/Session_Calculator/pkg/db_models"
	locerr "github.com/ERRORIK404/Session_Calculator/pkg/local_errors"
	"github.com/ERRORIK404/Session_Calculator/pkg/metrics"
)

// Caller - тот, кто делает запрос. Транспорт (HTTP сессия или gRPC метаданные) реализует его сам.
type Caller interface {
	// UserID возвращает id аутентифицированного пользователя
	UserID() (int64, bool)
	// SessionKey возвращает ключ гостевой сессии или "", если ее нет
	SessionKey() string
	// EnsureSessionKey создает гостевую сессию, если ее еще нет
	EnsureSessionKey(ctx context.Context) (string, error)
}

type Limits struct {
	GuestCalculations int
	GuestNotes        int
	GuestHistory      int
	NoteMaxLength     int
}

func DefaultLimits() Limits {
	return Limits{GuestCalculations: 10, GuestNotes: 2, GuestHistory: 10, NoteMaxLength: 500}
}

// Request - входные данные вычисления. Операнды приходят как число или строка.
type Request struct {
	Operand1 interface{}
	Operand2 interface{}
	Operator string
	Note     string
}

type Calculator struct {
	db     *db.DB
	limits Limits
}

func NewCalculator(database *db.DB, limits Limits) *Calculator {
	return &Calculator{db: database, limits: limits}
}

// Calculate проверяет запрос, считает результат и сохраняет ровно одну запись.
// При любой ошибке ничего не сохраняется.
func (c *Calculator) Calculate(ctx context.Context, caller Caller, req Request) (*models.CalculationRecord, error) {
	a, err := ParseOperand(req.Operand1)
	if err != nil {
		return nil, err
	}
	b, err := ParseOperand(req.Operand2)
	if err != nil {
		return nil, err
	}
	op := models.Operator(req.Operator)
	if !op.Valid() {
		return nil, locerr.ErrInvalidOperator
	}
	result, err := Apply(a, b, op)
	if err != nil {
		return nil, err
	}

	record := &models.CalculationRecord{
		Operand1: a,
		Operand2: b,
		Operator: op,
		Result:   result,
		Note:     NormalizeNote(req.Note, c.limits.NoteMaxLength),
	}

	if userID, ok := caller.UserID(); ok {
		record.Owner = models.UserOwner{UserID: userID}
		if err := c.db.Records().AddRecord(ctx, record); err != nil {
			return nil, err
		}
		metrics.ObserveCalculation("user", string(op))
		return record, nil
	}

	key, err := caller.EnsureSessionKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("guest session: %w", err)
	}
	owner := models.GuestOwner{SessionKey: key}
	record.Owner = owner

	// подсчет и вставка в одной транзакции, чтобы параллельные запросы не прошли лимит
	err = c.db.InTx(ctx, func(r *db.Records) error {
		count, err := r.CountRecords(ctx, owner)
		if err != nil {
			return err
		}
		if count >= c.limits.GuestCalculations {
			return fmt.Errorf("%w: log in to unlock full access", locerr.ErrGuestCalculationLimit)
		}

		if record.Note != "" {
			noted, err := r.CountNotedRecords(ctx, owner)
			if err != nil {
				return err
			}
			if noted >= c.limits.GuestNotes {
				return fmt.Errorf("%w: you can only add notes to %d calculations, log in for unlimited notes", locerr.ErrGuestNoteLimit, c.limits.GuestNotes)
			}
		}

		return r.AddRecord(ctx, record)
	})
	if err != nil {
		if locerr.IsQuota(err) {
			log.WithField("session", shortKey(key)).Info(err.Error())
		}
		return nil, err
	}

	metrics.ObserveCalculation("guest", string(op))
	return record, nil
}

// Apply применяет оператор к операндам без всякого разбора строк
func Apply(a, b float64, op models.Operator) (float64, error) {
	var result float64
	switch op {
	case models.OpAdd:
		result = a + b
	case models.OpSub:
		result = a - b
	case models.OpMul:
		result = a * b
	case models.OpDiv:
		if b == 0 {
			return 0, locerr.ErrDivisionByZero
		}
		result = a / b
	default:
		return 0, locerr.ErrInvalidOperator
	}

	if math.IsInf(result, 0) || math.IsNaN(result) {
		return 0, locerr.ErrResultOutOfRange
	}
	return result, nil
}

// ParseOperand принимает число или строку с числом. NaN и бесконечности не принимаются.
func ParseOperand(v interface{}) (float64, error) {
	var n float64
	switch value := v.(type) {
	case float64:
		n = value
	case float32:
		n = float64(value)
	case int:
		n = float64(value)
	case int64:
		n = float64(value)
	case json.Number:
		f, err := value.Float64()
		if err != nil {
			return 0, locerr.ErrInvalidNumber
		}
		n = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return 0, locerr.ErrInvalidNumber
		}
		n = f
	default:
		return 0, locerr.ErrInvalidNumber
	}

	if math.IsInf(n, 0) || math.IsNaN(n) {
		return 0, locerr.ErrInvalidNumber
	}
	return n, nil
}

// NormalizeNote обрезает пробелы и ограничивает длину заметки в символах
func NormalizeNote(note string, maxLength int) string {
	note = strings.TrimSpace(note)
	runes := []rune(note)
	if maxLength > 0 && len(runes) > maxLength {
		note = string(runes[:maxLength])
	}
	return note
}

func shortKey(key string) string {
	if len(key) > 8 {
		return key[:8]
	}
	return key
}
