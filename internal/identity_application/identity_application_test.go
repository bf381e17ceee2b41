package identity_application

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	db "github.com/ERRORIK404/Session_Calculator/database"
	locerr "github.com/ERRORIK404/Session_Calculator/pkg/local_errors"
)

func newTestIdentity(t *testing.T) (*Identity, *db.DB) {
	t.Helper()
	database, err := db.InitDB(filepath.Join(t.TempDir(), "identity.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	return New(database, Options{
		MinPasswordLength: 8,
		HashCost:          bcrypt.MinCost,
		JWTSecret:         "secret",
		TokenTTL:          time.Minute,
	}), database
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	identity, _ := newTestIdentity(t)

	user, err := identity.Register(ctx, "alice", "Tr1cky-Calc-42")
	require.NoError(t, err)
	require.Equal(t, "alice", user.Username)

	logged, err := identity.Login(ctx, "alice", "Tr1cky-Calc-42")
	require.NoError(t, err)
	require.Equal(t, user.ID, logged.ID)
}

func TestRegisterFieldErrors(t *testing.T) {
	ctx := context.Background()
	identity, _ := newTestIdentity(t)

	_, err := identity.Register(ctx, "alice", "Tr1cky-Calc-42")
	require.NoError(t, err)

	_, err = identity.Register(ctx, "alice", "123")
	var fe locerr.FieldErrors
	require.ErrorAs(t, err, &fe)
	require.Equal(t, []string{locerr.ErrUsernameTaken.Error()}, fe["username"])
	require.Contains(t, fe["password"], "This password is entirely numeric.")

	_, err = identity.Register(ctx, "", "")
	require.ErrorAs(t, err, &fe)
	require.Equal(t, []string{"This field is required."}, fe["username"])
	require.Equal(t, []string{"This field is required."}, fe["password"])
}

func TestLoginIsUniform(t *testing.T) {
	ctx := context.Background()
	identity, _ := newTestIdentity(t)

	_, err := identity.Register(ctx, "alice", "Tr1cky-Calc-42")
	require.NoError(t, err)

	_, wrongPassword := identity.Login(ctx, "alice", "nope-nope-nope")
	_, unknownUser := identity.Login(ctx, "bob", "Tr1cky-Calc-42")

	require.ErrorIs(t, wrongPassword, locerr.ErrInvalidCredentials)
	require.ErrorIs(t, unknownUser, locerr.ErrInvalidCredentials)
	require.Equal(t, wrongPassword.Error(), unknownUser.Error())
}

func TestTokens(t *testing.T) {
	ctx := context.Background()
	identity, _ := newTestIdentity(t)

	user, err := identity.Register(ctx, "alice", "Tr1cky-Calc-42")
	require.NoError(t, err)

	token, err := identity.IssueToken(user)
	require.NoError(t, err)

	got, err := identity.Authenticate(ctx, token)
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)

	_, err = identity.Authenticate(ctx, token+"x")
	require.ErrorIs(t, err, locerr.ErrInvalidToken)
}

func TestSessionStore(t *testing.T) {
	ctx := context.Background()
	_, database := newTestIdentity(t)
	store := NewSessionStore(database, time.Hour)

	guest, err := store.Create(ctx, 0)
	require.NoError(t, err)
	require.Len(t, guest.Key, 32)
	require.False(t, guest.Authenticated())

	loaded, err := store.Load(ctx, guest.Key)
	require.NoError(t, err)
	require.Equal(t, guest.Key, loaded.Key)

	user, err := database.CreateUser(ctx, "alice", "hash")
	require.NoError(t, err)

	rotated, err := store.Rotate(ctx, guest.Key, user.ID)
	require.NoError(t, err)
	require.NotEqual(t, guest.Key, rotated.Key)
	require.True(t, rotated.Authenticated())

	_, err = store.Load(ctx, guest.Key)
	require.ErrorIs(t, err, locerr.ErrSessionNotFound)

	// сдвигаем часы за срок жизни сессии
	store.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = store.Load(ctx, rotated.Key)
	require.ErrorIs(t, err, locerr.ErrSessionNotFound)

	_, err = store.Load(ctx, "")
	require.ErrorIs(t, err, locerr.ErrSessionNotFound)
}
