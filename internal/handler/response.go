package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"stakebook/internal/models"
)

// Response represents a standard API response.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo represents error details.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// JSON writes a JSON response.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := Response{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	json.NewEncoder(w).Encode(resp)
}

// Error writes an error response.
func Error(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	}

	json.NewEncoder(w).Encode(resp)
}

// Common error responses
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, "BAD_REQUEST", message)
}

func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, "NOT_FOUND", message)
}

func InternalError(w http.ResponseWriter, message string) {
	Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", message)
}

func Conflict(w http.ResponseWriter, code, message string) {
	Error(w, http.StatusConflict, code, message)
}

func Unprocessable(w http.ResponseWriter, code, message string) {
	Error(w, http.StatusUnprocessableEntity, code, message)
}

// DomainError maps the ledger's failure taxonomy to HTTP responses. Domain
// failures become 4xx with a stable code; anything else is a system fault and
// becomes an opaque 500.
func DomainError(w http.ResponseWriter, err error) {
	var (
		insufficient *models.InsufficientFundsError
		locked       *models.InsufficientLockedError
		notAllowed   *models.TransferNotAllowedError
		state        *models.TransactionStateError
	)

	switch {
	case errors.Is(err, models.ErrWalletNotFound),
		errors.Is(err, models.ErrTransactionNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, models.ErrWalletExists):
		Conflict(w, "WALLET_EXISTS", err.Error())
	case errors.Is(err, models.ErrDuplicateReference):
		Conflict(w, "DUPLICATE_REFERENCE", err.Error())
	case errors.As(err, &insufficient):
		Unprocessable(w, "INSUFFICIENT_FUNDS", err.Error())
	case errors.As(err, &locked):
		Unprocessable(w, "INSUFFICIENT_LOCKED_FUNDS", err.Error())
	case errors.As(err, &notAllowed):
		Unprocessable(w, "TRANSFER_NOT_ALLOWED", err.Error())
	case errors.As(err, &state):
		Unprocessable(w, "INVALID_STATE_TRANSITION", err.Error())
	case errors.Is(err, models.ErrWalletInactive):
		Unprocessable(w, "WALLET_INACTIVE", err.Error())
	case errors.Is(err, models.ErrCurrencyMismatch):
		Unprocessable(w, "CURRENCY_MISMATCH", err.Error())
	case errors.Is(err, models.ErrNotReversible):
		Unprocessable(w, "NOT_REVERSIBLE", err.Error())
	case errors.Is(err, models.ErrInvalidCurrency),
		errors.Is(err, models.ErrInvalidAmount),
		errors.Is(err, models.ErrReferenceRequired):
		BadRequest(w, err.Error())
	case errors.Is(err, models.ErrInvariantViolation):
		InternalError(w, err.Error())
	default:
		InternalError(w, "internal error")
	}
}
