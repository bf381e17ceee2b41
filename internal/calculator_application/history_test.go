package calculator_application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	models "github.com/ERRORIK404/Session_Calculator/pkg/db_models"
	locerr "github.com/ERRORIK404/Session_Calculator/pkg/local_errors"
)

func TestHistoryGuestList(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)
	history := NewHistory(database, DefaultLimits())

	// без сессии - пустой список, а не ошибка
	list, err := history.List(ctx, &fakeCaller{})
	require.NoError(t, err)
	require.NotNil(t, list)
	require.Empty(t, list)

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	owner := models.GuestOwner{SessionKey: "guest"}
	for i := 0; i < 12; i++ {
		require.NoError(t, database.Records().AddRecord(ctx, &models.CalculationRecord{
			Owner: owner, Operand1: float64(i), Operand2: 1, Operator: models.OpAdd, Result: float64(i + 1),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	list, err = history.List(ctx, &fakeCaller{key: "guest"})
	require.NoError(t, err)
	require.Len(t, list, 10)
	require.Equal(t, 11.0, list[0].Operand1)
	require.Equal(t, 2.0, list[9].Operand1)
}

func TestHistoryGuestCannotDelete(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)
	history := NewHistory(database, DefaultLimits())
	guest := &fakeCaller{key: "guest"}

	rec := &models.CalculationRecord{Owner: models.GuestOwner{SessionKey: "guest"}, Operand1: 1, Operand2: 1, Operator: models.OpAdd, Result: 2}
	require.NoError(t, database.Records().AddRecord(ctx, rec))

	_, err := history.Clear(ctx, guest)
	require.ErrorIs(t, err, locerr.ErrAuthenticationRequired)

	err = history.Delete(ctx, guest, rec.ID)
	require.ErrorIs(t, err, locerr.ErrAuthenticationRequired)

	require.Equal(t, 1, countFor(t, database, models.GuestOwner{SessionKey: "guest"}))
}

func TestHistoryOwnershipIsolation(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)
	calc := NewCalculator(database, DefaultLimits())
	history := NewHistory(database, DefaultLimits())
	alice := newUser(t, database, "alice")
	bob := newUser(t, database, "bob")

	aliceRec, err := calc.Calculate(ctx, alice, Request{Operand1: 1.0, Operand2: 2.0, Operator: "+"})
	require.NoError(t, err)
	bobRec, err := calc.Calculate(ctx, bob, Request{Operand1: 3.0, Operand2: 4.0, Operator: "*"})
	require.NoError(t, err)

	aliceList, err := history.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, aliceList, 1)
	require.Equal(t, aliceRec.ID, aliceList[0].ID)

	// чужая и несуществующая запись неразличимы
	errForeign := history.Delete(ctx, alice, bobRec.ID)
	errMissing := history.Delete(ctx, alice, bobRec.ID+100)
	require.ErrorIs(t, errForeign, locerr.ErrNotFound)
	require.ErrorIs(t, errMissing, locerr.ErrNotFound)
	require.Equal(t, errForeign.Error(), errMissing.Error())
	require.Equal(t, 1, countFor(t, database, models.UserOwner{UserID: bob.userID}))

	require.NoError(t, history.Delete(ctx, alice, aliceRec.ID))
	require.Zero(t, countFor(t, database, models.UserOwner{UserID: alice.userID}))
}

func TestHistoryClearAndIdempotentRead(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)
	calc := NewCalculator(database, DefaultLimits())
	history := NewHistory(database, DefaultLimits())
	alice := newUser(t, database, "alice")
	bob := newUser(t, database, "bob")

	for i := 0; i < 3; i++ {
		_, err := calc.Calculate(ctx, alice, Request{Operand1: float64(i), Operand2: 2.0, Operator: "-"})
		require.NoError(t, err)
	}
	_, err := calc.Calculate(ctx, bob, Request{Operand1: 1.0, Operand2: 1.0, Operator: "+"})
	require.NoError(t, err)

	first, err := history.List(ctx, alice)
	require.NoError(t, err)
	second, err := history.List(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Len(t, first, 3)
	require.True(t, first[0].ID > first[1].ID)

	n, err := history.Clear(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, int64(3), n)

	list, err := history.List(ctx, alice)
	require.NoError(t, err)
	require.Empty(t, list)
	require.Equal(t, 1, countFor(t, database, models.UserOwner{UserID: bob.userID}))
}
