package services

import (
	"errors"
	"fmt"
)

// Kind classifies a service failure so the HTTP layer can pick a status code
type Kind int

const (
	// KindInternal is anything unexpected, such as the database being unreachable
	KindInternal Kind = iota
	// KindValidation is bad input from the client
	KindValidation
	// KindNotFound means a referenced record does not exist
	KindNotFound
	// KindBusinessRule means the input was well formed but the operation is not allowed
	KindBusinessRule
	// KindForbidden means the record belongs to another user
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindBusinessRule:
		return "business_rule"
	case KindForbidden:
		return "forbidden"
	}
	return "internal"
}

// Error codes returned to clients
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeEmptyOrder          = "EMPTY_ORDER"
	CodeInvalidUser         = "INVALID_USER"
	CodeInvalidMethod       = "INVALID_PAYMENT_METHOD"
	CodeIncompleteAddress   = "INCOMPLETE_SHIPPING_ADDRESS"
	CodeTotalMismatch       = "TOTAL_MISMATCH"
	CodeInvalidStatus       = "INVALID_STATUS"
	CodeInvalidRefundAmount = "INVALID_REFUND_AMOUNT"
	CodeUserNotFound        = "USER_NOT_FOUND"
	CodeOrderNotFound       = "ORDER_NOT_FOUND"
	CodePaymentNotFound     = "PAYMENT_NOT_FOUND"
	CodeAnalysisNotFound    = "ANALYSIS_NOT_FOUND"
	CodeReportNotFound      = "REPORT_NOT_FOUND"
	CodeProductNotFound     = "PRODUCT_NOT_FOUND"
	CodeIllegalTransition   = "ILLEGAL_TRANSITION"
	CodeNotCancellable      = "ORDER_NOT_CANCELLABLE"
	CodeNotRefundable       = "PAYMENT_NOT_REFUNDABLE"
	CodePaymentNotPending   = "PAYMENT_NOT_PENDING"
	CodeConcurrentUpdate    = "CONCURRENT_UPDATE"
	CodeForbidden           = "FORBIDDEN"
	CodeInternal            = "INTERNAL_ERROR"
)

// ServiceError is returned by every service operation that fails
type ServiceError struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err. Errors that are not a ServiceError are internal.
func KindOf(err error) Kind {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

// AsServiceError converts err into a ServiceError, wrapping unknown errors as internal
func AsServiceError(err error) *ServiceError {
	var se *ServiceError
	if errors.As(err, &se) {
		return se
	}
	return internalError("Unexpected error", err)
}

func validationError(code, message string) *ServiceError {
	return &ServiceError{Kind: KindValidation, Code: code, Message: message}
}

func notFound(code, message string) *ServiceError {
	return &ServiceError{Kind: KindNotFound, Code: code, Message: message}
}

func businessRule(code, message string, err error) *ServiceError {
	return &ServiceError{Kind: KindBusinessRule, Code: code, Message: message, Err: err}
}

func forbidden(message string) *ServiceError {
	return &ServiceError{Kind: KindForbidden, Code: CodeForbidden, Message: message}
}

func internalError(message string, err error) *ServiceError {
	return &ServiceError{Kind: KindInternal, Code: CodeInternal, Message: message, Err: err}
}
