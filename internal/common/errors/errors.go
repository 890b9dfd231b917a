// Package errors provides standardized error handling for the cost optimizer API.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Authentication / account errors
	ErrCodeNotAuthenticated       ErrorCode = "NOT_AUTHENTICATED"
	ErrCodeInvalidToken           ErrorCode = "INVALID_TOKEN"
	ErrCodeInvalidCredentials     ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeEmailAlreadyRegistered ErrorCode = "EMAIL_ALREADY_REGISTERED"
	ErrCodeUserNotFound           ErrorCode = "USER_NOT_FOUND"

	// Request validation
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	// Cloud connector errors
	ErrCodeConnectorAuthFailed  ErrorCode = "CONNECTOR_AUTH_FAILED"
	ErrCodeCostDataUnavailable  ErrorCode = "COST_DATA_UNAVAILABLE"
	ErrCodeInventoryUnavailable ErrorCode = "INVENTORY_UNAVAILABLE"
	ErrCodeMetricsUnavailable   ErrorCode = "METRICS_UNAVAILABLE"

	// Analysis / optimization errors
	ErrCodeAnalysisFailed     ErrorCode = "ANALYSIS_FAILED"
	ErrCodeOptimizationFailed ErrorCode = "OPTIMIZATION_FAILED"

	// Infrastructure errors
	ErrCodeDatabaseError     ErrorCode = "DATABASE_ERROR"
	ErrCodeCacheUnavailable  ErrorCode = "CACHE_UNAVAILABLE"
	ErrCodeSearchUnavailable ErrorCode = "SEARCH_UNAVAILABLE"

	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// --- Constructors ---

// NewNotAuthenticatedError creates a non-retryable missing-credentials error.
func NewNotAuthenticatedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotAuthenticated,
		Message:   "Not authenticated",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidTokenError creates a non-retryable token error.
func NewInvalidTokenError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidToken,
		Message:   "Invalid or expired token",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidCredentialsError creates a non-retryable login failure.
func NewInvalidCredentialsError() *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidCredentials,
		Message:   "Invalid credentials",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEmailAlreadyRegisteredError creates a non-retryable registration conflict.
func NewEmailAlreadyRegisteredError(email string) *StandardError {
	return &StandardError{
		Code:      ErrCodeEmailAlreadyRegistered,
		Message:   "Email already registered",
		Details:   fmt.Sprintf("email: %s", email),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUserNotFoundError creates a non-retryable lookup failure.
func NewUserNotFoundError(email string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUserNotFound,
		Message:   "User not found",
		Details:   fmt.Sprintf("email: %s", email),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationFailedError creates a non-retryable request validation error.
func NewValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Request validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewConnectorAuthFailedError creates a retryable connector auth error.
func NewConnectorAuthFailedError(provider string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeConnectorAuthFailed,
		Message:   fmt.Sprintf("Cloud provider '%s' authentication failed", provider),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCostDataUnavailableError creates a retryable cost data fetch error.
func NewCostDataUnavailableError(provider string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCostDataUnavailable,
		Message:   fmt.Sprintf("Cost data unavailable from '%s'", provider),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInventoryUnavailableError creates a retryable inventory fetch error.
func NewInventoryUnavailableError(provider string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInventoryUnavailable,
		Message:   fmt.Sprintf("Resource inventory unavailable from '%s'", provider),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewMetricsUnavailableError creates a retryable utilization metrics error.
func NewMetricsUnavailableError(resourceID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMetricsUnavailable,
		Message:   "Utilization metrics unavailable",
		Details:   fmt.Sprintf("resourceId: %s, error: %s", resourceID, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAnalysisFailedError creates a non-retryable analysis error.
func NewAnalysisFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAnalysisFailed,
		Message:   "Cost analysis failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseError creates a retryable database error.
func NewDatabaseError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseError,
		Message:   "Database operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheUnavailableError creates a retryable cache error.
func NewCacheUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheUnavailable,
		Message:   "Cache unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchUnavailableError creates a retryable search index error.
func NewSearchUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchUnavailable,
		Message:   "Analysis history index unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotFoundError creates a non-retryable not-found error.
func NewNotFoundError(resource string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotFound,
		Message:   "Resource not found",
		Details:   resource,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError wraps an unexpected error.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternalError,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// --- Utility Functions ---

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "TOKEN") || strings.Contains(codeStr, "AUTHENTICATED") ||
		strings.Contains(codeStr, "CREDENTIALS") || strings.Contains(codeStr, "EMAIL") ||
		strings.Contains(codeStr, "USER"):
		return "AUTH"
	case strings.Contains(codeStr, "CONNECTOR") || strings.Contains(codeStr, "COST_DATA") ||
		strings.Contains(codeStr, "INVENTORY") || strings.Contains(codeStr, "METRICS"):
		return "CONNECTOR"
	case strings.Contains(codeStr, "ANALYSIS") || strings.Contains(codeStr, "OPTIMIZATION"):
		return "ANALYSIS"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "CACHE") ||
		strings.Contains(codeStr, "SEARCH"):
		return "INFRASTRUCTURE"
	case strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}

// IsRetryable checks whether an error carries a retryable StandardError.
func IsRetryable(err error) bool {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr.Retryable
	}
	return false
}
