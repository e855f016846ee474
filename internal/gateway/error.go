package gateway

import (
	"fmt"

	ierr "github.com/billforge/billforge/internal/errors"
)

// ErrorCode is the small internal taxonomy of provider failure codes the
// core is allowed to pattern-match on. Everything else is generic.
type ErrorCode string

const (
	ErrCodeInsufficientFunds ErrorCode = "insufficient_funds"
	ErrCodeResourceMissing   ErrorCode = "resource_missing"
	ErrCodeGeneric           ErrorCode = "generic"
)

// Error carries a provider failure translated into the internal taxonomy.
// Adapters wrap it with ierr.ErrGateway; callers retrieve it with CodeOf and
// never see raw provider exceptions.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("gateway error (%s): %s", e.Code, e.Message)
}

// CodeOf extracts the taxonomy code from any error chain, defaulting to
// generic for non-gateway errors.
func CodeOf(err error) ErrorCode {
	var gerr *Error
	if ierr.As(err, &gerr) {
		return gerr.Code
	}
	return ErrCodeGeneric
}
