package orchestrator_application

import (
	"context"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	identity "github.com/ERRORIK404/Session_Calculator/internal/identity_application"
	models "github.com/ERRORIK404/Session_Calculator/pkg/db_models"
	locerr "github.com/ERRORIK404/Session_Calculator/pkg/local_errors"
)

const (
	sessionCookieName = "sessionid"
	csrfCookieName    = "csrftoken"
	csrfHeaderName    = "X-CSRFToken"
)

type sessionContextKey struct{}

// requestSession - сессия текущего HTTP запроса. Реализует calculator_application.Caller.
type requestSession struct {
	store   *identity.SessionStore
	w       http.ResponseWriter
	secure  bool
	session *models.Session
}

func (s *requestSession) UserID() (int64, bool) {
	if s.session.Authenticated() {
		return s.session.UserID.Int64, true
	}
	return 0, false
}

func (s *requestSession) SessionKey() string {
	if s.session == nil {
		return ""
	}
	return s.session.Key
}

// EnsureSessionKey лениво создает гостевую сессию и ставит cookie
func (s *requestSession) EnsureSessionKey(ctx context.Context) (string, error) {
	if s.session != nil {
		return s.session.Key, nil
	}
	session, err := s.store.Create(ctx, 0)
	if err != nil {
		return "", err
	}
	s.set(session)
	return session.Key, nil
}

// login заменяет текущую сессию сессией пользователя
func (s *requestSession) login(ctx context.Context, user *models.User) error {
	session, err := s.store.Rotate(ctx, s.SessionKey(), user.ID)
	if err != nil {
		return err
	}
	s.set(session)
	return nil
}

func (s *requestSession) logout(ctx context.Context) error {
	if s.session != nil {
		if err := s.store.Delete(ctx, s.session.Key); err != nil {
			return err
		}
	}
	s.session = nil
	clearCookie(s.w, sessionCookieName, true, s.secure)
	return nil
}

func (s *requestSession) set(session *models.Session) {
	s.session = session
	http.SetCookie(s.w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    session.Key,
		Path:     "/",
		MaxAge:   int(s.store.TTL().Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearCookie(w http.ResponseWriter, name string, httpOnly, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: httpOnly,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func sessionFrom(r *http.Request) *requestSession {
	s, _ := r.Context().Value(sessionContextKey{}).(*requestSession)
	return s
}

// sessionMiddleware загружает сессию по cookie. Отсутствующая или истекшая сессия - это гость.
func (o *Orchestrator) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := &requestSession{store: o.sessions, w: w, secure: o.config.COOKIE_SECURE}

		if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
			session, err := o.sessions.Load(r.Context(), cookie.Value)
			switch {
			case err == nil:
				// продлеваем cookie вместе с сессией
				s.set(session)
			case errors.Is(err, locerr.ErrSessionNotFound):
				clearCookie(w, sessionCookieName, true, o.config.COOKIE_SECURE)
			default:
				log.WithError(err).Error("failed to load session")
				writeError(w, http.StatusInternalServerError, "internal server error")
				return
			}
		}

		ctx := context.WithValue(r.Context(), sessionContextKey{}, s)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
