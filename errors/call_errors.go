package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/mezonai/decash/jsonx"
)

// CallErrorCode identifies the failure kind reported to the invoker of an aborted call
type CallErrorCode string

const (
	ErrCodeInternal            CallErrorCode = "internal_error"
	ErrCodeInvalidArgs         CallErrorCode = "invalid_args"
	ErrCodeMethodNotFound      CallErrorCode = "method_not_found"
	ErrCodeNotViewMethod       CallErrorCode = "not_view_method"
	ErrCodeInsufficientBalance CallErrorCode = "insufficient_balance"
	ErrCodeInvalidRecipient    CallErrorCode = "invalid_recipient"
	ErrCodeInvalidAmount       CallErrorCode = "invalid_amount"
)

const (
	ErrMsgInternal            = "Contract execution failed, state was not changed"
	ErrMsgInvalidArgs         = "Call arguments are malformed"
	ErrMsgMethodNotFound      = "Contract method %q does not exist"
	ErrMsgNotViewMethod       = "Contract method %q mutates state and cannot be viewed"
	ErrMsgInsufficientBalance = "Contract balance is too low for this transfer"
	ErrMsgInvalidRecipient    = "Transfer recipient is not a valid account"
	ErrMsgInvalidAmount       = "Transfer amount is invalid or zero"
)

// CallError is the failure signal returned for an aborted call
type CallError struct {
	Code    CallErrorCode `json:"code"`
	Message string        `json:"message"`
	cause   error
}

// Error implements the error interface
func (e *CallError) Error() string {
	out, _ := jsonx.Marshal(e)
	return string(out)
}

// Unwrap exposes the underlying cause, if any
func (e *CallError) Unwrap() error {
	return e.cause
}

// NewError creates a new CallError and returns it as error interface
func NewError(code CallErrorCode, message string) error {
	return &CallError{Code: code, Message: message}
}

// Newf creates a CallError with a formatted message and a wrapped cause
func Newf(cause error, code CallErrorCode, format string, args ...interface{}) *CallError {
	return &CallError{Code: code, Message: fmt.Sprintf(format, args...), cause: cause}
}

// CodeOf returns the code carried by err, or ErrCodeInternal when err is not a CallError
func CodeOf(err error) CallErrorCode {
	var ce *CallError
	if stderrors.As(err, &ce) {
		return ce.Code
	}
	return ErrCodeInternal
}

// AsCallError converts any error to a CallError, keeping err as its cause
func AsCallError(err error) *CallError {
	if err == nil {
		return nil
	}
	var ce *CallError
	if stderrors.As(err, &ce) {
		return ce
	}
	return Newf(err, ErrCodeInternal, ErrMsgInternal)
}
