// internal/common/errors/http.go
package errors

import (
	"encoding/json"
	"net/http"
	"time"
)

// HTTPHandler writes errors to HTTP responses with standardized mapping
type HTTPHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewHTTPHandler(logger Logger) *HTTPHandler {
	return &HTTPHandler{logger: logger}
}

// statusMapping maps internal error codes to HTTP status codes.
var statusMapping = map[ErrorCode]int{
	ErrCodeNotAuthenticated:       http.StatusUnauthorized,
	ErrCodeInvalidToken:           http.StatusUnauthorized,
	ErrCodeInvalidCredentials:     http.StatusBadRequest,
	ErrCodeEmailAlreadyRegistered: http.StatusConflict,
	ErrCodeUserNotFound:           http.StatusUnauthorized,
	ErrCodeValidationFailed:       http.StatusBadRequest,
	ErrCodeConnectorAuthFailed:    http.StatusBadGateway,
	ErrCodeCostDataUnavailable:    http.StatusBadGateway,
	ErrCodeInventoryUnavailable:   http.StatusBadGateway,
	ErrCodeMetricsUnavailable:     http.StatusBadGateway,
	ErrCodeAnalysisFailed:         http.StatusInternalServerError,
	ErrCodeOptimizationFailed:     http.StatusInternalServerError,
	ErrCodeDatabaseError:          http.StatusInternalServerError,
	ErrCodeCacheUnavailable:       http.StatusServiceUnavailable,
	ErrCodeSearchUnavailable:      http.StatusServiceUnavailable,
	ErrCodeNotFound:               http.StatusNotFound,
	ErrCodeInternalError:          http.StatusInternalServerError,
}

// HTTPStatus returns the HTTP status for an error code.
func HTTPStatus(code ErrorCode) int {
	if status, exists := statusMapping[code]; exists {
		return status
	}
	return http.StatusInternalServerError
}

// errorResponse is the JSON error body sent to clients.
type errorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

// WriteError normalizes err to a StandardError, logs it and writes the
// JSON error response with the mapped status code.
func (h *HTTPHandler) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	stdErr := h.normalizeError(err)

	h.logger.Error("request failed", map[string]interface{}{
		"method":        r.Method,
		"path":          r.URL.Path,
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"errorCategory": GetErrorCategory(stdErr.Code),
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(HTTPStatus(stdErr.Code))
	_ = json.NewEncoder(w).Encode(errorResponse{
		Code:    stdErr.Code,
		Message: stdErr.Message,
		Details: stdErr.Details,
	})
}

// normalizeError ensures we always have a StandardError
func (h *HTTPHandler) normalizeError(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternalError,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
