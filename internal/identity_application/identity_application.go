package identity_application

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	db "github.com/ERRORIK404/Session_Calculator/database"
	models "github.com/ERRORIK404/Session_Calculator/pkg/db_models"
	hashing "github.com/ERRORIK404/Session_Calculator/pkg/hashing"
	locerr "github.com/ERRORIK404/Session_Calculator/pkg/local_errors"
	"github.com/ERRORIK404/Session_Calculator/pkg/tokenezation"
)

type Options struct {
	MinPasswordLength int
	HashCost          int
	JWTSecret         string
	TokenTTL          time.Duration
}

// Identity регистрирует и аутентифицирует пользователей.
// Сессиями управляет SessionStore, транспорт решает, как хранить ключ сессии.
type Identity struct {
	db   *db.DB
	opts Options
}

func New(database *db.DB, opts Options) *Identity {
	return &Identity{db: database, opts: opts}
}

func (i *Identity) Register(ctx context.Context, username, password string) (*models.User, error) {
	errs := locerr.FieldErrors{}
	ValidateUsername(username, errs)
	if errs.Empty() {
		_, err := i.db.GetUser(ctx, username)
		switch {
		case err == nil:
			errs.Add("username", locerr.ErrUsernameTaken.Error())
		case !errors.Is(err, locerr.ErrUserNotFound):
			return nil, err
		}
	}
	ValidatePassword(password, username, i.opts.MinPasswordLength, errs)
	if !errs.Empty() {
		return nil, errs
	}

	hash, err := hashing.HashPassword(password, i.opts.HashCost)
	if hashing.IsTooLong(err) {
		errs.Add("password", "This password is too long.")
		return nil, errs
	}
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := i.db.CreateUser(ctx, username, hash)
	if errors.Is(err, locerr.ErrUsernameTaken) {
		// кто-то успел зарегистрироваться между проверкой и вставкой
		errs.Add("username", locerr.ErrUsernameTaken.Error())
		return nil, errs
	}
	if err != nil {
		return nil, err
	}

	log.WithField("username", user.Username).Info("user registered")
	return user, nil
}

// Login возвращает одну и ту же ошибку для неизвестного имени и неверного пароля
func (i *Identity) Login(ctx context.Context, username, password string) (*models.User, error) {
	user, err := i.db.GetUser(ctx, username)
	if errors.Is(err, locerr.ErrUserNotFound) {
		hashing.SpendTime(password)
		return nil, locerr.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !hashing.CheckPassword(user.PasswordHash, password) {
		return nil, locerr.ErrInvalidCredentials
	}
	return user, nil
}

func (i *Identity) User(ctx context.Context, id int64) (*models.User, error) {
	return i.db.GetUserByID(ctx, id)
}

// IssueToken выдает JWT для gRPC агентов
func (i *Identity) IssueToken(user *models.User) (string, error) {
	return tokenezation.GenerateToken(user.ID, user.Username, i.opts.JWTSecret, i.opts.TokenTTL)
}

// Authenticate проверяет JWT и что пользователь все еще существует
func (i *Identity) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := tokenezation.CheckToken(token, i.opts.JWTSecret)
	if err != nil {
		return nil, err
	}
	user, err := i.db.GetUserByID(ctx, claims.UserID)
	if errors.Is(err, locerr.ErrUserNotFound) {
		return nil, locerr.ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	if user.Username != claims.Login {
		return nil, locerr.ErrInvalidToken
	}
	return user, nil
}
