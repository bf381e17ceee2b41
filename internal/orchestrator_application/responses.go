package orchestrator_application

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/schema"
	log "github.com/sirupsen/logrus"

	locerr "github.com/ERRORIK404/Session_Calculator/pkg/local_errors"
	"github.com/ERRORIK404/Session_Calculator/pkg/metrics"
	structs "github.com/ERRORIK404/Session_Calculator/pkg/structs"
)

const maxBodyBytes = 1 << 20

var errBadBody = errors.New("invalid request body")

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, structs.ErrorResponse{Error: message})
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, structs.DetailResponse{Detail: detail})
}

// statusFor сопоставляет ошибку с HTTP статусом. 500 означает внутреннюю ошибку.
func statusFor(err error) int {
	var fe locerr.FieldErrors
	switch {
	case errors.As(err, &fe), errors.Is(err, errBadBody):
		return http.StatusBadRequest
	case locerr.IsValidation(err):
		return http.StatusBadRequest
	case locerr.IsQuota(err):
		return http.StatusForbidden
	case errors.Is(err, locerr.ErrAuthenticationRequired), errors.Is(err, locerr.ErrCSRFFailed):
		return http.StatusForbidden
	case errors.Is(err, locerr.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, locerr.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// message не отдает клиенту текст внутренних ошибок
func message(err error, status int) string {
	if status == http.StatusInternalServerError {
		return "internal server error"
	}
	return err.Error()
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, locerr.ErrGuestCalculationLimit):
		return "guest_calculation_limit"
	case errors.Is(err, locerr.ErrGuestNoteLimit):
		return "guest_note_limit"
	case errors.Is(err, locerr.ErrDivisionByZero):
		return "division_by_zero"
	case errors.Is(err, locerr.ErrAuthenticationRequired):
		return "authentication_required"
	case errors.Is(err, locerr.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, locerr.ErrNotFound):
		return "not_found"
	default:
		return "invalid_input"
	}
}

// fail отвечает {"error": ...}
func fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).WithField("path", r.URL.Path).Error("request failed")
	} else {
		metrics.ObserveRejection(rejectionReason(err))
	}

	var fe locerr.FieldErrors
	if errors.As(err, &fe) {
		writeJSON(w, status, structs.ErrorResponse{Error: "invalid registration data", Errors: fe})
		return
	}
	writeError(w, status, message(err, status))
}

// failDetail отвечает {"detail": ...}, как эндпоинты истории
func failDetail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).WithField("path", r.URL.Path).Error("request failed")
	} else {
		metrics.ObserveRejection(rejectionReason(err))
	}
	writeDetail(w, status, message(err, status))
}

func isForm(r *http.Request) bool {
	contentType := r.Header.Get("Content-Type")
	return strings.HasPrefix(contentType, "application/x-www-form-urlencoded") ||
		strings.HasPrefix(contentType, "multipart/form-data")
}

// decodeForm раскладывает форму в структуру с тегами schema
func decodeForm(decoder *schema.Decoder, r *http.Request, dst interface{}) error {
	if err := r.ParseForm(); err != nil {
		return errBadBody
	}
	if err := decoder.Decode(dst, r.PostForm); err != nil {
		return errBadBody
	}
	return nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return errBadBody
	}
	return nil
}
