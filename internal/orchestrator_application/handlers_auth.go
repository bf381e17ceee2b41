package orchestrator_application

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	locerr "github.com/ERRORIK404/Session_Calculator/pkg/local_errors"
	structs "github.com/ERRORIK404/Session_Calculator/pkg/structs"
)

// setCSRFToken ставит cookie с токеном. Cookie без HttpOnly, фронтенд читает его и шлет в заголовке.
func (o *Orchestrator) setCSRFToken(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(o.config.SESSION_TTL.Seconds()),
		Secure:   o.config.COOKIE_SECURE,
		SameSite: http.SameSiteLaxMode,
	})
	w.Header().Set(csrfHeaderName, token)
}

func newCSRFToken() string {
	return uuid.NewString()
}

func (o *Orchestrator) csrfHandler(w http.ResponseWriter, r *http.Request) {
	token := newCSRFToken()
	if cookie, err := r.Cookie(csrfCookieName); err == nil && cookie.Value != "" {
		token = cookie.Value
	}
	o.setCSRFToken(w, token)
	writeDetail(w, http.StatusOK, "CSRF cookie set")
}

func (o *Orchestrator) decodeAuth(w http.ResponseWriter, r *http.Request) (structs.AuthRequest, error) {
	var body structs.AuthRequest
	if isForm(r) {
		return body, decodeForm(o.decoder, r, &body)
	}
	return body, decodeJSON(w, r, &body)
}

func (o *Orchestrator) registerHandler(w http.ResponseWriter, r *http.Request) {
	body, err := o.decodeAuth(w, r)
	if err != nil {
		fail(w, r, err)
		return
	}

	user, err := o.identity.Register(r.Context(), body.Username, body.Password)
	if err != nil {
		fail(w, r, err)
		return
	}
	if err := sessionFrom(r).login(r.Context(), user); err != nil {
		fail(w, r, err)
		return
	}
	o.setCSRFToken(w, newCSRFToken())

	writeJSON(w, http.StatusCreated, structs.RegisterResponse{
		Message:  "Registered & logged in successfully",
		Username: user.Username,
	})
}

func (o *Orchestrator) loginHandler(w http.ResponseWriter, r *http.Request) {
	body, err := o.decodeAuth(w, r)
	if err != nil {
		fail(w, r, err)
		return
	}

	user, err := o.identity.Login(r.Context(), body.Username, body.Password)
	if err != nil {
		if errors.Is(err, locerr.ErrInvalidCredentials) {
			log.WithField("username", body.Username).Info("failed login attempt")
		}
		fail(w, r, err)
		return
	}
	if err := sessionFrom(r).login(r.Context(), user); err != nil {
		fail(w, r, err)
		return
	}
	o.setCSRFToken(w, newCSRFToken())

	writeJSON(w, http.StatusOK, structs.AuthResponse{
		Message:         "Login successful",
		Username:        user.Username,
		IsAuthenticated: true,
	})
}

func (o *Orchestrator) logoutHandler(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r)
	if _, ok := s.UserID(); !ok {
		fail(w, r, locerr.ErrAuthenticationRequired)
		return
	}
	if err := s.logout(r.Context()); err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, structs.MessageResponse{Message: "Logged out"})
}

// meHandler никогда не падает с ошибкой клиента: в худшем случае это аноним
func (o *Orchestrator) meHandler(w http.ResponseWriter, r *http.Request) {
	resp := structs.MeResponse{}
	if userID, ok := sessionFrom(r).UserID(); ok {
		user, err := o.identity.User(r.Context(), userID)
		switch {
		case err == nil:
			resp.IsAuthenticated = true
			resp.Username = user.Username
		case errors.Is(err, locerr.ErrUserNotFound):
		default:
			fail(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
