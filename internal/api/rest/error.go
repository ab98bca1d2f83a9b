package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mysterylink/button-server/internal/domain"
	"github.com/mysterylink/button-server/internal/logger"
)

// ErrorCode represents a standardized error code
type ErrorCode string

const (
	// Client errors (4xx)
	errCodeBadRequest         ErrorCode = "bad_request"
	errCodeValidationFailed   ErrorCode = "validation_failed"
	errCodeNotFound           ErrorCode = "not_found"
	errCodeForbidden          ErrorCode = "forbidden"
	errCodeOwnershipExpired   ErrorCode = "ownership_expired"
	errCodeTransactionUsed    ErrorCode = "transaction_already_used"
	errCodeTransactionPending ErrorCode = "transaction_not_found"
	errCodePaymentRejected    ErrorCode = "payment_rejected"

	// Server errors (5xx)
	errCodeInternalError ErrorCode = "internal_error"
)

// errorResponse represents a standardized error response
type errorResponse struct {
	Error errorDetail `json:"error"`
}

// errorDetail contains error information
type errorDetail struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

// respondWithError sends a standardized error response
func respondWithError(c *gin.Context, statusCode int, code ErrorCode, message string, details ...string) {
	response := errorResponse{
		Error: errorDetail{
			Code:    code,
			Message: message,
		},
	}

	if len(details) > 0 {
		response.Error.Details = details[0]
	}

	c.JSON(statusCode, response)
}

// respondValidationError sends a 400 Bad Request with validation error
func respondValidationError(c *gin.Context, details string) {
	respondWithError(c, http.StatusBadRequest, errCodeValidationFailed, "Validation failed", details)
}

// respondInternalError sends a 500 Internal Server Error response and logs the error
func respondInternalError(c *gin.Context, err error, message string, fields ...zap.Field) {
	logger.Error(err, fields...)
	respondWithError(c, http.StatusInternalServerError, errCodeInternalError, message)
}

// respondDomainError maps a service error onto the HTTP surface. Unrecognized
// errors are treated as internal.
func respondDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidHashFormat):
		respondValidationError(c, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		respondWithError(c, http.StatusNotFound, errCodeNotFound, "Not found", err.Error())
	case errors.Is(err, domain.ErrForbidden):
		respondWithError(c, http.StatusForbidden, errCodeForbidden, "Only the current owner may do that", err.Error())
	case errors.Is(err, domain.ErrOwnershipExpired):
		respondWithError(c, http.StatusForbidden, errCodeOwnershipExpired, "The ownership has expired", err.Error())
	case errors.Is(err, domain.ErrDuplicateTransaction):
		respondWithError(c, http.StatusBadRequest, errCodeTransactionUsed, "This transaction has already been used", err.Error())
	case errors.Is(err, domain.ErrTransactionNotYetVisible):
		respondWithError(c, http.StatusBadRequest, errCodeTransactionPending,
			"Transaction not found on chain yet. Wait for it to confirm and try again.", err.Error())
	case errors.Is(err, domain.ErrTransactionFailed),
		errors.Is(err, domain.ErrWrongRecipient),
		errors.Is(err, domain.ErrInsufficientAmount),
		errors.Is(err, domain.ErrSenderMismatch),
		errors.Is(err, domain.ErrPaymentTooSmall):
		respondWithError(c, http.StatusBadRequest, errCodePaymentRejected, "Payment rejected", err.Error())
	default:
		respondInternalError(c, err, "Internal server error")
	}
}
