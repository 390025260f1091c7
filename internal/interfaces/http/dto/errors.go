package dto

import "net/http"

// API error codes. Handlers translate domain errors into these codes so
// clients can branch on a stable identifier instead of parsing messages.
const (
	// Input errors
	ErrCodeInvalidParameter  = "ERR_INVALID_PARAMETER"
	ErrCodeValidationFailed  = "ERR_VALIDATION_FAILED"
	ErrCodeInvalidQuantity   = "ERR_INVALID_QUANTITY"
	ErrCodeMissingReason     = "ERR_MISSING_REASON"
	ErrCodeUnknownUnit       = "ERR_UNKNOWN_UNIT"
	ErrCodeInvalidAdjustment = "ERR_INVALID_ADJUSTMENT"

	// Resource errors
	ErrCodeNotFound      = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"

	// Business rule errors
	ErrCodeInsufficientStock = "ERR_INSUFFICIENT_STOCK"
	ErrCodeInvalidState      = "ERR_INVALID_STATE"

	// Concurrency errors
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"

	// System errors
	ErrCodeInternal    = "ERR_INTERNAL"
	ErrCodeUnavailable = "ERR_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps API error codes to HTTP status codes.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInvalidParameter:  http.StatusBadRequest,
	ErrCodeValidationFailed:  http.StatusBadRequest,
	ErrCodeInvalidQuantity:   http.StatusBadRequest,
	ErrCodeMissingReason:     http.StatusBadRequest,
	ErrCodeUnknownUnit:       http.StatusBadRequest,
	ErrCodeInvalidAdjustment: http.StatusBadRequest,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,

	ErrCodeInsufficientStock: http.StatusUnprocessableEntity,
	ErrCodeInvalidState:      http.StatusUnprocessableEntity,

	ErrCodeConcurrencyConflict: http.StatusConflict,

	ErrCodeInternal:    http.StatusInternalServerError,
	ErrCodeUnavailable: http.StatusServiceUnavailable,
}

// DomainErrorCodeMapping translates the bare codes carried by domain
// errors into their API counterparts.
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_PARAMETER":    ErrCodeInvalidParameter,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"INVALID_STATE":        ErrCodeInvalidState,
	"UNKNOWN_UNIT":         ErrCodeUnknownUnit,
	"INVALID_QUANTITY":     ErrCodeInvalidQuantity,
	"INSUFFICIENT_STOCK":   ErrCodeInsufficientStock,
	"INVALID_ADJUSTMENT":   ErrCodeInvalidAdjustment,
	"MISSING_REASON":       ErrCodeMissingReason,
}

// NormalizeErrorCode converts a domain error code to its API form. Codes
// already in API form pass through; unknown codes map to ERR_INTERNAL.
func NormalizeErrorCode(code string) string {
	if _, ok := ErrorCodeHTTPStatus[code]; ok {
		return code
	}
	if normalized, ok := DomainErrorCodeMapping[code]; ok {
		return normalized
	}
	return ErrCodeInternal
}

// GetHTTPStatus returns the HTTP status for an API error code,
// defaulting to 500 for codes outside the catalog.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
