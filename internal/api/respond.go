package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"task-tracker/internal/auth"
	"task-tracker/internal/logger"
	"task-tracker/internal/model"
)

const maxBodyBytes = 1 << 20

var errEmptyBody = model.Invalid("request body is empty")

type errorResponse struct {
	Error string `json:"error"`
}

func (s *server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.WithError(err).Warn("write response")
	}
}

func (s *server) writeMessage(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

// writeError maps the error taxonomy onto status codes. Anything unrecognised is a 500
// with a generic body; the details only go to the log.
func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, model.ErrValidation):
		s.writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrForbidden):
		s.writeMessage(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, model.ErrNotFound):
		s.writeMessage(w, http.StatusNotFound, "not found")
	default:
		s.requestLog(r).WithError(err).Error("request failed")
		s.writeMessage(w, http.StatusInternalServerError, "internal server error")
	}
}

func (s *server) requestLog(r *http.Request) logrus.FieldLogger {
	log := logger.WithRequestID(s.log, RequestID(r.Context()))
	if userID, ok := auth.UserID(r.Context()); ok {
		log = log.WithField("user_id", userID)
	}
	return log
}

// decodeBody reads a single JSON document. Unknown fields are ignored. Decoder details go to
// the log only; the client gets a short reason.
func (s *server) decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		s.requestLog(r).WithError(err).Debug("decode request body")
		return model.Invalid("malformed request body: %s", bodyErrorReason(err))
	}
	return nil
}

func bodyErrorReason(err error) string {
	var (
		typeErr  *json.UnmarshalTypeError
		parseErr *time.ParseError
	)
	switch {
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return typeErr.Field + " has the wrong type"
	case errors.As(err, &typeErr):
		return "unexpected JSON type"
	case errors.As(err, &parseErr):
		return "timestamps must be RFC 3339"
	default:
		return "invalid JSON"
	}
}

// pathID parses a positive integer path value.
func pathID(r *http.Request, name string) (uint, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, model.Invalid("%s must be a positive integer, got %q", name, raw)
	}
	return uint(id), nil
}

// currentUser returns the id placed in the context by requireAuth.
func currentUser(r *http.Request) (string, error) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		return "", fmt.Errorf("no authenticated user in request context")
	}
	return userID, nil
}
