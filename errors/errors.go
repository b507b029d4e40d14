package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

type AppError struct {
	Code    int    `json:"-"`
	Message string `json:"error"`
	Op      string `json:"-"`
	Err     error  `json:"-"`
	Kind    Kind   `json:"-"`
}

// Kind distinguishes precondition failures that callers branch on.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidInput
	KindNotFound
	KindInvalidState
	KindAlreadyDelivered
)

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func InvalidInput(op string, err error, message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Message: message,
		Op:      op,
		Err:     err,
		Kind:    KindInvalidInput,
	}
}

func NotFound(op string, err error, message string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Message: message,
		Op:      op,
		Err:     err,
		Kind:    KindNotFound,
	}
}

// InvalidState rejects an operation because the entity is not in a status the
// operation accepts (e.g. processing a video that is already downloading).
func InvalidState(op string, err error, message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Message: message,
		Op:      op,
		Err:     err,
		Kind:    KindInvalidState,
	}
}

// AlreadyDelivered rejects a second distribution of the same summary.
func AlreadyDelivered(op string, err error, message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Message: message,
		Op:      op,
		Err:     err,
		Kind:    KindAlreadyDelivered,
	}
}

func Internal(op string, err error, message string) *AppError {
	return &AppError{
		Code:    http.StatusInternalServerError,
		Message: message,
		Op:      op,
		Err:     err,
		Kind:    KindInternal,
	}
}

func isKind(err error, kind Kind) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

func IsNotFound(err error) bool         { return isKind(err, KindNotFound) }
func IsInvalidInput(err error) bool     { return isKind(err, KindInvalidInput) }
func IsInvalidState(err error) bool     { return isKind(err, KindInvalidState) }
func IsAlreadyDelivered(err error) bool { return isKind(err, KindAlreadyDelivered) }
