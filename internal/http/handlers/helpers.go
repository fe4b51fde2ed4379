package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/http/middleware/identity"
	"courier-dispatch/internal/logx"
)

const bodyLimit = 1 << 20

func reqID(ctx context.Context) string {
	if id := middleware.GetReqID(ctx); id != "" {
		return id
	}
	return "-"
}

func writeJSON(logger logx.Logger, w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		logger.Error("json encode error",
			logx.String("req_id", reqID(r.Context())),
			logx.Err(err),
		)
	}
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

func writeError(logger logx.Logger, w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeErrorReason(logger, w, r, status, msg, "")
}

func writeErrorReason(logger logx.Logger, w http.ResponseWriter, r *http.Request, status int, msg, reason string) {
	fields := []logx.Field{
		logx.String("req_id", reqID(r.Context())),
		logx.Int("status", status),
		logx.String("msg", msg),
	}
	if status >= http.StatusInternalServerError {
		logger.Error("http error", fields...)
	} else {
		logger.Debug("http error", fields...)
	}
	writeJSON(logger, w, r, status, ErrorResponse{Error: msg, Reason: reason})
}

// writeServiceError maps the apperr sentinels onto status codes.
func writeServiceError(logger logx.Logger, w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, apperr.ErrInvalid):
		writeError(logger, w, r, http.StatusBadRequest, "invalid input")
	case errors.Is(err, apperr.ErrForbidden):
		writeError(logger, w, r, http.StatusForbidden, "forbidden")
	case errors.Is(err, apperr.ErrNotFound):
		writeError(logger, w, r, http.StatusNotFound, "not found")
	case errors.Is(err, apperr.ErrAlreadyAssigned):
		writeError(logger, w, r, http.StatusConflict, "order no longer available")
	case errors.Is(err, apperr.ErrConflict):
		writeError(logger, w, r, http.StatusConflict, "conflict")
	case errors.Is(err, apperr.ErrNotEligible):
		writeError(logger, w, r, http.StatusUnprocessableEntity, "not eligible")
	case errors.Is(err, apperr.ErrDependencyUnavailable), errors.Is(err, context.DeadlineExceeded):
		w.Header().Set("Retry-After", "1")
		writeError(logger, w, r, http.StatusServiceUnavailable, "temporarily unavailable")
	default:
		logger.Error("unhandled service error",
			logx.String("req_id", reqID(r.Context())),
			logx.Err(err),
		)
		writeError(logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON[T any](logger logx.Logger, w http.ResponseWriter, r *http.Request, dst *T) bool {
	r.Body = http.MaxBytesReader(w, r.Body, bodyLimit)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		writeError(logger, w, r, http.StatusBadRequest, "invalid json")
		return false
	}
	if err := dec.Decode(new(struct{})); err != io.EOF {
		writeError(logger, w, r, http.StatusBadRequest, "invalid json: trailing data")
		return false
	}
	return true
}

func idFromURL(r *http.Request, name string) (int64, error) {
	idStr := chi.URLParam(r, name)
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// actorFrom returns the caller or writes 401.
func actorFrom(logger logx.Logger, w http.ResponseWriter, r *http.Request) (identity.Actor, bool) {
	a, ok := identity.FromContext(r.Context())
	if !ok {
		writeError(logger, w, r, http.StatusUnauthorized, "unauthorized")
	}
	return a, ok
}
