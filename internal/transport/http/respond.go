package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"weekly-quiz-service/internal/domain"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

var errInvalidBody = &domain.Error{Code: "invalid_body", Kind: domain.KindValidation, Message: "request body must be a JSON object"}

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func (a *API) writeData(w http.ResponseWriter, statusCode int, data any) {
	a.countResponse("")
	writeJSON(w, statusCode, envelope{Success: true, Data: data})
}

// writeError maps domain errors onto status codes. Anything else is a 500 whose
// details only reach the log.
func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message := statusFor(err)
	if status == http.StatusInternalServerError {
		a.log.WithError(err).WithField("path", r.URL.Path).Error("request failed")
	}
	a.countResponse(code)
	writeJSON(w, status, envelope{Success: false, Error: code, Message: message})
}

func statusFor(err error) (int, string, string) {
	var derr *domain.Error
	if !errors.As(err, &derr) {
		return http.StatusInternalServerError, "server_error", "internal server error"
	}
	switch derr.Kind {
	case domain.KindValidation, domain.KindConflict:
		return http.StatusBadRequest, derr.Code, derr.Message
	case domain.KindUnauthorized:
		return http.StatusUnauthorized, derr.Code, derr.Message
	case domain.KindNotFound:
		return http.StatusNotFound, derr.Code, derr.Message
	default:
		return http.StatusInternalServerError, "server_error", "internal server error"
	}
}

func (a *API) countResponse(code string) {
	if a.metrics != nil {
		a.metrics.Requests.WithLabelValues(code).Inc()
	}
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return errInvalidBody
	}
	return nil
}

func parseIntParam(r *http.Request, key string, defaultValue int) (int, error) {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, domain.ErrInvalidFields
	}
	return parsed, nil
}
