package calculator_application

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	db "github.com/ERRORIK404/Session_Calculator/database"
	models "github.com/ERRORIK404/Session_Calculator/pkg/db_models"
	locerr "github.com/ERRORIK404/Session_Calculator/pkg/local_errors"
)

type fakeCaller struct {
	userID  int64
	key     string
	created int
}

func (f *fakeCaller) UserID() (int64, bool) { return f.userID, f.userID != 0 }

func (f *fakeCaller) SessionKey() string { return f.key }

func (f *fakeCaller) EnsureSessionKey(ctx context.Context) (string, error) {
	if f.key == "" {
		f.created++
		f.key = "guest-session-key"
	}
	return f.key, nil
}

func newTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.InitDB(filepath.Join(t.TempDir(), "calc.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func newUser(t *testing.T, database *db.DB, name string) *fakeCaller {
	t.Helper()
	user, err := database.CreateUser(context.Background(), name, "hash")
	require.NoError(t, err)
	return &fakeCaller{userID: user.ID}
}

func countFor(t *testing.T, database *db.DB, owner models.Owner) int {
	t.Helper()
	n, err := database.Records().CountRecords(context.Background(), owner)
	require.NoError(t, err)
	return n
}

func TestCalculateArithmetic(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)
	calc := NewCalculator(database, DefaultLimits())
	user := newUser(t, database, "alice")
	x, y := 0.1, 0.2

	cases := []struct {
		a, b interface{}
		op   string
		want float64
	}{
		{7.0, 3.0, "+", 10},
		{20.0, 10.0, "-", 10},
		{4.0, 5.0, "*", 20},
		{9.0, 2.0, "/", 4.5},
		{"1.5", " 2.5 ", "+", 4},
		{-3.0, "0", "*", 0},
		{x, y, "+", x + y},
	}
	for _, tc := range cases {
		rec, err := calc.Calculate(ctx, user, Request{Operand1: tc.a, Operand2: tc.b, Operator: tc.op})
		require.NoError(t, err)
		require.Equal(t, tc.want, rec.Result)
		require.Equal(t, models.UserOwner{UserID: user.userID}, rec.Owner)
	}
	require.Equal(t, len(cases), countFor(t, database, models.UserOwner{UserID: user.userID}))
}

func TestCalculateRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)
	calc := NewCalculator(database, DefaultLimits())

	cases := []struct {
		req  Request
		want error
	}{
		{Request{Operand1: "abc", Operand2: 1.0, Operator: "+"}, locerr.ErrInvalidNumber},
		{Request{Operand1: nil, Operand2: 1.0, Operator: "+"}, locerr.ErrInvalidNumber},
		{Request{Operand1: true, Operand2: 1.0, Operator: "+"}, locerr.ErrInvalidNumber},
		{Request{Operand1: 1.0, Operand2: "inf", Operator: "+"}, locerr.ErrInvalidNumber},
		{Request{Operand1: "NaN", Operand2: 1.0, Operator: "+"}, locerr.ErrInvalidNumber},
		{Request{Operand1: 1.0, Operand2: "1e400", Operator: "+"}, locerr.ErrInvalidNumber},
		{Request{Operand1: 1.0, Operand2: 1.0, Operator: "%"}, locerr.ErrInvalidOperator},
		{Request{Operand1: 1.0, Operand2: 1.0, Operator: ""}, locerr.ErrInvalidOperator},
		{Request{Operand1: 1.0, Operand2: 1.0, Operator: " +"}, locerr.ErrInvalidOperator},
		{Request{Operand1: 10.0, Operand2: 0.0, Operator: "/"}, locerr.ErrDivisionByZero},
		{Request{Operand1: 1e308, Operand2: 10.0, Operator: "*"}, locerr.ErrResultOutOfRange},
	}
	for _, tc := range cases {
		guest := &fakeCaller{}
		_, err := calc.Calculate(ctx, guest, tc.req)
		require.ErrorIs(t, err, tc.want)
		// до сохранения дело не дошло, сессия не создавалась
		require.Zero(t, guest.created)
	}

	var total int
	require.NoError(t, database.DB.Get(&total, "SELECT COUNT(*) FROM calculations"))
	require.Zero(t, total)
}

func TestGuestCalculation(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)
	calc := NewCalculator(database, DefaultLimits())
	guest := &fakeCaller{}

	rec, err := calc.Calculate(ctx, guest, Request{Operand1: 20.0, Operand2: 10.0, Operator: "-"})
	require.NoError(t, err)
	require.Equal(t, 10.0, rec.Result)
	require.Equal(t, 1, guest.created)
	require.Equal(t, models.GuestOwner{SessionKey: "guest-session-key"}, rec.Owner)

	var row struct {
		UserID     *int64  `db:"user_id"`
		SessionKey *string `db:"session_key"`
	}
	require.NoError(t, database.DB.Get(&row, "SELECT user_id, session_key FROM calculations WHERE id = ?", rec.ID))
	require.Nil(t, row.UserID)
	require.NotNil(t, row.SessionKey)
	require.Equal(t, "guest-session-key", *row.SessionKey)
}

func TestGuestCalculationLimit(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)
	calc := NewCalculator(database, DefaultLimits())
	guest := &fakeCaller{}

	for i := 0; i < 10; i++ {
		_, err := calc.Calculate(ctx, guest, Request{Operand1: float64(i), Operand2: 1.0, Operator: "+"})
		require.NoError(t, err)
	}

	_, err := calc.Calculate(ctx, guest, Request{Operand1: 1.0, Operand2: 1.0, Operator: "+"})
	require.ErrorIs(t, err, locerr.ErrGuestCalculationLimit)
	require.Equal(t, 10, countFor(t, database, models.GuestOwner{SessionKey: guest.key}))

	// другая гостевая сессия считается отдельно
	other := &fakeCaller{key: "another-guest"}
	_, err = calc.Calculate(ctx, other, Request{Operand1: 1.0, Operand2: 1.0, Operator: "+"})
	require.NoError(t, err)
}

func TestGuestNoteLimit(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)
	calc := NewCalculator(database, DefaultLimits())
	guest := &fakeCaller{}

	for i := 0; i < 2; i++ {
		_, err := calc.Calculate(ctx, guest, Request{Operand1: 1.0, Operand2: 2.0, Operator: "+", Note: "remember"})
		require.NoError(t, err)
	}

	_, err := calc.Calculate(ctx, guest, Request{Operand1: 1.0, Operand2: 2.0, Operator: "+", Note: "third"})
	require.ErrorIs(t, err, locerr.ErrGuestNoteLimit)
	require.NotErrorIs(t, err, locerr.ErrGuestCalculationLimit)

	// без заметки и с заметкой из пробелов можно
	_, err = calc.Calculate(ctx, guest, Request{Operand1: 1.0, Operand2: 2.0, Operator: "+"})
	require.NoError(t, err)
	rec, err := calc.Calculate(ctx, guest, Request{Operand1: 1.0, Operand2: 2.0, Operator: "+", Note: "   "})
	require.NoError(t, err)
	require.Empty(t, rec.Note)

	require.Equal(t, 4, countFor(t, database, models.GuestOwner{SessionKey: guest.key}))
}

func TestAuthenticatedHasNoQuota(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)
	calc := NewCalculator(database, DefaultLimits())
	user := newUser(t, database, "alice")

	for i := 0; i < 15; i++ {
		_, err := calc.Calculate(ctx, user, Request{Operand1: 4.0, Operand2: 5.0, Operator: "*", Note: "note"})
		require.NoError(t, err)
	}
	require.Equal(t, 15, countFor(t, database, models.UserOwner{UserID: user.userID}))
}

func TestNoteIsTruncated(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)
	calc := NewCalculator(database, DefaultLimits())
	user := newUser(t, database, "alice")

	note := strings.Repeat("ж", 600)
	rec, err := calc.Calculate(ctx, user, Request{Operand1: 1.0, Operand2: 1.0, Operator: "+", Note: "  " + note})
	require.NoError(t, err)
	require.Equal(t, 500, len([]rune(rec.Note)))

	history, err := NewHistory(database, DefaultLimits()).List(ctx, user)
	require.NoError(t, err)
	require.Equal(t, rec.Note, history[0].Note)
}

func TestGuestInsertFailureRollsBack(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	database := db.NewDB(sqlx.NewDb(mockDB, "sqlite3"))
	calc := NewCalculator(database, DefaultLimits())

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM calculations WHERE session_key = ?")).
		WithArgs("guest-session-key").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM calculations WHERE session_key = ? AND note <> ''")).
		WithArgs("guest-session-key").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO calculations")).
		WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	_, err = calc.Calculate(context.Background(), &fakeCaller{}, Request{Operand1: 1.0, Operand2: 2.0, Operator: "+", Note: "n"})
	require.ErrorContains(t, err, "disk I/O error")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestParseOperand(t *testing.T) {
	n, err := ParseOperand(" -2.5e1 ")
	require.NoError(t, err)
	require.Equal(t, -25.0, n)

	_, err = ParseOperand(math.Inf(1))
	require.ErrorIs(t, err, locerr.ErrInvalidNumber)

	_, err = ParseOperand([]int{1})
	require.ErrorIs(t, err, locerr.ErrInvalidNumber)
}
