package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"cashledger/internal/core"
	"cashledger/internal/export"
	"cashledger/internal/importer"
	"cashledger/internal/services"
)

// JSONResponseBuilder provides a fluent API for JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	payload    any
}

// NewJSONResponse creates a builder with a 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Data sets the value encoded as the response body.
func (b *JSONResponseBuilder) Data(v any) *JSONResponseBuilder {
	b.payload = v
	return b
}

func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	if b.payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(b.payload); err != nil {
		slog.Warn("Failed to encode JSON response", "error", err)
	}
}

// errorBody is the shape of every error response.
type errorBody struct {
	Error  string `json:"error"`
	Status string `json:"status,omitempty"`
}

// ErrorResponse builds an error body with the given status code.
func ErrorResponse(statusCode int, message, statusMessage string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(statusCode).
		Data(errorBody{Error: message, Status: statusMessage})
}

func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message, "")
}

func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message, "")
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrEntryNotFound), errors.Is(err, export.ErrUnknownView):
		return http.StatusNotFound
	case errors.Is(err, services.ErrPersistence):
		return http.StatusBadGateway
	case errors.Is(err, core.ErrUnknownEntryType),
		errors.Is(err, core.ErrUnknownStatus),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidQuantity),
		errors.Is(err, core.ErrInvalidSerialRange),
		errors.Is(err, core.ErrInvalidBooklets),
		errors.Is(err, core.ErrMissingCost),
		errors.Is(err, core.ErrMixedFields),
		errors.Is(err, core.ErrTypeChange),
		errors.Is(err, core.ErrUnknownCoupon),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, services.ErrNoEntries),
		errors.Is(err, services.ErrNothingToArchive),
		errors.Is(err, importer.ErrNoSheet),
		errors.Is(err, importer.ErrBadWorkbook),
		errors.Is(err, importer.ErrUnknownMergeMode):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// ServiceError renders err with the status code it maps to. Persistence
// failures carry the service's status message.
func ServiceError(err error, statusMessage string) *JSONResponseBuilder {
	code := statusFor(err)
	if code != http.StatusBadGateway {
		statusMessage = ""
	}
	return ErrorResponse(code, err.Error(), statusMessage)
}
