package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"storefront/internal/middleware"
	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// dataResponse is the success envelope.
type dataResponse struct {
	Data interface{} `json:"data"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeData wraps data in the success envelope.
func writeData(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, dataResponse{Data: data})
}

// statusForKind maps a domain error kind to its HTTP status.
func statusForKind(kind model.ErrorKind) int {
	switch kind {
	case model.KindInput:
		return http.StatusBadRequest
	case model.KindBusinessRule:
		return http.StatusUnprocessableEntity
	case model.KindNotFound:
		return http.StatusNotFound
	case model.KindConflict:
		return http.StatusConflict
	case model.KindUnauthorised:
		return http.StatusUnauthorized
	case model.KindForbidden:
		return http.StatusForbidden
	case model.KindIntegration:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as an error response. Errors that are not domain errors become a 500.
func writeError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	body := model.ErrorResponse{
		Error:         model.ErrCodeInternalError,
		Message:       "internal server error",
		CorrelationID: middleware.RequestIDFromContext(r.Context()),
	}
	status := http.StatusInternalServerError

	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		status = statusForKind(domainErr.Kind)
		body.Error = domainErr.Code
		body.Message = domainErr.Message
		body.Detail = domainErr.Detail
	}

	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Err(err).
		Int("status", status).
		Str("code", body.Error).
		Str("request_id", body.CorrelationID).
		Msg("handler error")

	writeJSON(w, status, body)
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return model.NewDomainError(model.ErrCodeInvalidJSON, model.KindInput, "invalid request body")
	}
	return nil
}

// pathUUID parses the named path value as a UUID.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := r.PathValue(name)
	if raw == "" {
		return uuid.Nil, model.NewValidationError(fmt.Sprintf("%s is required", name))
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, model.NewValidationError(fmt.Sprintf("invalid %s format", name))
	}
	return id, nil
}

// queryInt reads an optional integer query parameter.
func queryInt(r *http.Request, name string, defaultValue int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, model.NewValidationError(fmt.Sprintf("invalid %s parameter", name))
	}
	return value, nil
}

// pagination reads limit and offset query parameters.
func pagination(r *http.Request) (int, int, error) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		return 0, 0, err
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		return 0, 0, err
	}
	return limit, offset, nil
}
