package errorutil

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	return NewDomainError("NOT_FOUND", fmt.Sprintf("%s not found", resource), http.StatusNotFound, details)
}

// NewInvalidTransition rejects a state-machine operation whose precondition
// no longer holds. Callers should re-check state before retrying.
func NewInvalidTransition(message string, details map[string]any) error {
	return NewDomainError("INVALID_TRANSITION", message, http.StatusConflict, details)
}

// NewVoucherNotActive reports the voucher's current status so a partner
// counter operator can be told why the scan failed.
func NewVoucherNotActive(currentStatus string) error {
	return NewDomainError("VOUCHER_NOT_ACTIVE",
		fmt.Sprintf("voucher is %s, not ACTIVE", currentStatus),
		http.StatusConflict,
		map[string]any{"current_status": currentStatus})
}

func NewVoucherExpired() error {
	return NewDomainError("VOUCHER_EXPIRED", "voucher has expired", http.StatusConflict, nil)
}

func NewNotEligible(message string, details map[string]any) error {
	return NewDomainError("NOT_ELIGIBLE", message, http.StatusForbidden, details)
}

func NewSoldOut(listingID string) error {
	return NewDomainError("SOLD_OUT", "listing has no remaining quantity",
		http.StatusConflict, map[string]any{"listing_id": listingID})
}

func NewClaimLimitExceeded(limit int) error {
	return NewDomainError("CLAIM_LIMIT_EXCEEDED", "per-user claim limit reached",
		http.StatusConflict, map[string]any{"claim_limit_per_user": limit})
}

// NewCodeGenerationExhausted signals that code generation kept colliding with
// persisted codes. Retryable by the caller after a short delay.
func NewCodeGenerationExhausted(err error) error {
	return &DomainError{
		Code:       "CODE_GENERATION_EXHAUSTED",
		Message:    "could not generate a unique code",
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

// NewStoreUnavailable wraps a transient infrastructure fault. Safe to retry
// with backoff; never surfaced as a business error.
func NewStoreUnavailable(err error) error {
	return &DomainError{
		Code:       "STORE_UNAVAILABLE",
		Message:    "data store unavailable",
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError("CONFLICT", message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// IsCode reports whether err is a DomainError carrying the given code.
func IsCode(err error, code string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}

// ToDomainError converts generic errors to DomainError. pgx row-miss errors
// become NOT_FOUND; connection-level pg faults become STORE_UNAVAILABLE.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return NewNotFound("resource", nil).(*DomainError)
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return NewStoreUnavailable(err).(*DomainError)
	}
	return NewInternalError(err).(*DomainError)
}

func MapError(err error) error {
	if err == nil {
		return nil
	}
	return ToDomainError(err)
}
