package identity_application

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	db "github.com/ERRORIK404/Session_Calculator/database"
	models "github.com/ERRORIK404/Session_Calculator/pkg/db_models"
	locerr "github.com/ERRORIK404/Session_Calculator/pkg/local_errors"
)

// SessionStore хранит сессии в таблице sessions. Срок жизни продлевается на каждом обращении.
type SessionStore struct {
	db  *db.DB
	ttl time.Duration
	now func() time.Time
}

func NewSessionStore(database *db.DB, ttl time.Duration) *SessionStore {
	return &SessionStore{db: database, ttl: ttl, now: time.Now}
}

func (s *SessionStore) TTL() time.Duration {
	return s.ttl
}

func NewSessionKey() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Create заводит новую сессию: гостевую, если userID == 0
func (s *SessionStore) Create(ctx context.Context, userID int64) (*models.Session, error) {
	now := s.now().UTC()
	session := &models.Session{
		Key:       NewSessionKey(),
		UserID:    sql.NullInt64{Int64: userID, Valid: userID != 0},
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.db.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Load возвращает живую сессию и продлевает ее. Истекшая сессия удаляется и считается отсутствующей.
func (s *SessionStore) Load(ctx context.Context, key string) (*models.Session, error) {
	if key == "" {
		return nil, locerr.ErrSessionNotFound
	}
	now := s.now().UTC()
	session, err := s.db.GetSession(ctx, key, now)
	if errors.Is(err, locerr.ErrSessionNotFound) {
		if delErr := s.db.DeleteSession(ctx, key); delErr != nil {
			log.WithError(delErr).Warn("failed to delete expired session")
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	session.ExpiresAt = now.Add(s.ttl)
	if err := s.db.TouchSession(ctx, key, session.ExpiresAt); err != nil {
		return nil, err
	}
	return session, nil
}

// Rotate заменяет сессию новой сессией пользователя. Гостевые записи остаются на старом ключе.
func (s *SessionStore) Rotate(ctx context.Context, oldKey string, userID int64) (*models.Session, error) {
	if oldKey != "" {
		if err := s.db.DeleteSession(ctx, oldKey); err != nil {
			return nil, err
		}
	}
	return s.Create(ctx, userID)
}

func (s *SessionStore) Delete(ctx context.Context, key string) error {
	return s.db.DeleteSession(ctx, key)
}

// Purge удаляет все истекшие сессии
func (s *SessionStore) Purge(ctx context.Context) (int64, error) {
	return s.db.DeleteExpiredSessions(ctx, s.now())
}
