package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/fjod/go_cart/merchant-api/internal/domain"
)

const (
	codeValidation      = "VALIDATION_ERROR"
	codeInternal        = "INTERNAL_ERROR"
	codeNotFound        = "NOT_FOUND"
	codePayloadTooLarge = "PAYLOAD_TOO_LARGE"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success bool         `json:"success"`
	Data    any          `json:"data,omitempty"`
	Meta    any          `json:"meta,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type listMeta struct {
	Pagination domain.PaginationMeta `json:"pagination"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondOK(w http.ResponseWriter, status int, data any) {
	respondJSON(w, status, Envelope{Success: true, Data: data})
}

func respondError(w http.ResponseWriter, status int, code, message string, details any) {
	respondJSON(w, status, Envelope{
		Error: &ErrorDetail{Code: code, Message: message, Details: details},
	})
}

// statusFor maps a domain error kind to an HTTP status.
func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindValidation, domain.KindBusinessRule:
		return http.StatusBadRequest
	case domain.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// handleServiceError answers with the domain error's code and message, or a
// generic 500 for anything else.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var derr *domain.Error
	if errors.As(err, &derr) {
		respondError(w, statusFor(derr.Kind), derr.Code, derr.Message, derr.Details)
		return
	}
	slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	respondError(w, http.StatusInternalServerError, codeInternal, "Internal server error", nil)
}

// decodeJSON fills dst from the body and validates it. An empty body decodes
// to the zero value so required fields are reported by validation. It reports
// whether the handler may continue.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, codePayloadTooLarge, "Request body too large", nil)
			return false
		}
		respondError(w, http.StatusBadRequest, codeValidation, "Invalid request data",
			[]FieldError{{Field: "body", Message: err.Error()}})
		return false
	}
	if details := validateStruct(dst); len(details) > 0 {
		respondError(w, http.StatusBadRequest, codeValidation, "Invalid request data", details)
		return false
	}
	return true
}

func notFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusNotFound, codeNotFound, "Route "+r.Method+" "+r.URL.Path+" not found", nil)
}
