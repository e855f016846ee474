package errors

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Common error types that can be used across the application
var (
	ErrNotFound         = new(ErrCodeNotFound, "resource not found")
	ErrAlreadyExists    = new(ErrCodeAlreadyExists, "resource already exists")
	ErrValidation       = new(ErrCodeValidation, "validation error")
	ErrInvalidOperation = new(ErrCodeInvalidOperation, "invalid operation")
	ErrDatabase         = new(ErrCodeDatabase, "database error")
	ErrInternal         = new(ErrCodeInternal, "internal error")
	ErrSystem           = new(ErrCodeSystemError, "system error")

	// Billing-specific error types. These form the taxonomy the subscription
	// manager reports to callers; nothing below leaks provider exceptions.
	ErrPaymentMethodMissing = new(ErrCodePaymentMethodMissing, "no usable payment method")
	ErrGateway              = new(ErrCodeGateway, "payment gateway error")
	ErrInvoicePaymentFailed = new(ErrCodeInvoicePaymentFailed, "invoice payment failed")
	ErrScheduleConflict     = new(ErrCodeScheduleConflict, "subscription schedule conflict")
	ErrSwapFailed           = new(ErrCodeSwapFailed, "subscription swap failed")
	ErrResumeFailed         = new(ErrCodeResumeFailed, "subscription resume failed")
	ErrNoActiveSubscription = new(ErrCodeNoActiveSubscription, "no active subscription")

	// maps errors to http status codes
	statusCodeMap = map[error]int{
		ErrNotFound:             http.StatusNotFound,
		ErrAlreadyExists:        http.StatusConflict,
		ErrValidation:           http.StatusBadRequest,
		ErrInvalidOperation:     http.StatusBadRequest,
		ErrDatabase:             http.StatusInternalServerError,
		ErrInternal:             http.StatusInternalServerError,
		ErrSystem:               http.StatusInternalServerError,
		ErrPaymentMethodMissing: http.StatusUnprocessableEntity,
		ErrGateway:              http.StatusBadGateway,
		ErrInvoicePaymentFailed: http.StatusPaymentRequired,
		ErrScheduleConflict:     http.StatusConflict,
		ErrSwapFailed:           http.StatusBadGateway,
		ErrResumeFailed:         http.StatusUnprocessableEntity,
		ErrNoActiveSubscription: http.StatusNotFound,
	}
)

const (
	ErrCodeNotFound         = "not_found"
	ErrCodeAlreadyExists    = "already_exists"
	ErrCodeValidation       = "validation_error"
	ErrCodeInvalidOperation = "invalid_operation"
	ErrCodeDatabase         = "database_error"
	ErrCodeInternal         = "internal_error"
	ErrCodeSystemError      = "system_error"

	ErrCodePaymentMethodMissing = "payment_method_missing"
	ErrCodeGateway              = "gateway_error"
	ErrCodeInvoicePaymentFailed = "invoice_payment_failed"
	ErrCodeScheduleConflict     = "schedule_conflict"
	ErrCodeSwapFailed           = "swap_failed"
	ErrCodeResumeFailed         = "resume_failed"
	ErrCodeNoActiveSubscription = "no_active_subscription"
)

// InternalError represents a domain error
type InternalError struct {
	Code    string // Machine-readable error code
	Message string // Human-readable error message
	Err     error  // Underlying error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.DisplayError()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Err.Error())
}

func (e *InternalError) DisplayError() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Is implements error matching for wrapped errors
func (e *InternalError) Is(target error) bool {
	if target == nil {
		return false
	}

	t, ok := target.(*InternalError)
	if !ok {
		return errors.Is(e.Err, target)
	}

	return e.Code == t.Code
}

func new(code string, message string) *InternalError {
	return &InternalError{
		Code:    code,
		Message: message,
	}
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsGateway checks if an error originated at the payment gateway
func IsGateway(err error) bool {
	return errors.Is(err, ErrGateway)
}

// IsPaymentMethodMissing checks if an error is a missing payment method error
func IsPaymentMethodMissing(err error) bool {
	return errors.Is(err, ErrPaymentMethodMissing)
}

// IsInvoicePaymentFailed checks if an error is an invoice payment failure
func IsInvoicePaymentFailed(err error) bool {
	return errors.Is(err, ErrInvoicePaymentFailed)
}

// IsNoActiveSubscription checks if an error is a missing subscription error
func IsNoActiveSubscription(err error) bool {
	return errors.Is(err, ErrNoActiveSubscription)
}

// IsScheduleConflict checks if an error is a schedule conflict error
func IsScheduleConflict(err error) bool {
	return errors.Is(err, ErrScheduleConflict)
}

func HTTPStatusFromErr(err error) int {
	for e, status := range statusCodeMap {
		if errors.Is(err, e) {
			return status
		}
	}
	return http.StatusInternalServerError
}
