package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/vacationrentals/internal/api/middleware"
	"github.com/zatekoja/vacationrentals/internal/domain/entities"
	apperrors "github.com/zatekoja/vacationrentals/pkg/errors"
)

// maxBodyBytes bounds every JSON request body
const maxBodyBytes = 1 << 20

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// respondWithAppError maps an error to its HTTP status. Unexpected errors are
// logged and reported without detail.
func respondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		log.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Unhandled error")
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	status := statusForError(appErr.Type)
	message := appErr.Message
	switch status {
	case http.StatusInternalServerError:
		log.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Internal error")
		message = "internal server error"
	case http.StatusBadGateway:
		log.Ctx(r.Context()).Warn().Err(err).Str("path", r.URL.Path).Msg("Upstream provider error")
	}
	respondWithError(w, status, message)
}

func statusForError(t apperrors.ErrorType) int {
	switch t {
	case apperrors.ErrorTypeValidation:
		return http.StatusBadRequest
	case apperrors.ErrorTypeUnauthorized:
		return http.StatusUnauthorized
	case apperrors.ErrorTypeForbidden:
		return http.StatusForbidden
	case apperrors.ErrorTypeNotFound:
		return http.StatusNotFound
	case apperrors.ErrorTypeConflict:
		return http.StatusConflict
	case apperrors.ErrorTypeRateLimited:
		return http.StatusTooManyRequests
	case apperrors.ErrorTypeExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a bounded JSON body into v. An empty body is allowed when
// allowEmpty is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}, allowEmpty bool) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || (allowEmpty && errors.Is(err, io.EOF)) {
		return true
	}
	respondWithError(w, http.StatusBadRequest, "invalid request payload")
	return false
}

// requireActor returns the identified caller or answers 401
func requireActor(w http.ResponseWriter, r *http.Request) (entities.Actor, bool) {
	actor := middleware.ActorFromContext(r.Context())
	if actor.UserID == "" {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return actor, false
	}
	return actor, true
}

// pageFromQuery reads ?page and ?pageSize; bad values fall back to defaults
func pageFromQuery(r *http.Request) entities.Pagination {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("pageSize"))
	return entities.NewPagination(page, pageSize)
}

// intQuery parses an optional integer parameter
func intQuery(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.NewValidationError(name + " must be an integer")
	}
	return n, nil
}

// dateQuery parses a required YYYY-MM-DD parameter
func dateQuery(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, apperrors.NewValidationError(name + " is required")
	}
	t, err := entities.ParseDate(raw)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError(name + " must be a date (YYYY-MM-DD)")
	}
	return t, nil
}
