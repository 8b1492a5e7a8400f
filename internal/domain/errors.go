package domain

import "errors"

type ErrorKind string

const (
	ErrBadRequest   ErrorKind = "bad_request"
	ErrUnauthorized ErrorKind = "unauthorized"
	ErrForbidden    ErrorKind = "forbidden"
	ErrNotFound     ErrorKind = "not_found"
	ErrConflict     ErrorKind = "conflict"
)

// Error 是核心流程返回给调用方的业务错误，Kind 用于区分错误类别，
// Message 直接作为展示给用户的提示信息。
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func BadRequest(message string) *Error {
	return NewError(ErrBadRequest, message)
}

func Forbidden(message string) *Error {
	return NewError(ErrForbidden, message)
}

func NotFound(message string) *Error {
	return NewError(ErrNotFound, message)
}

func Conflict(message string) *Error {
	return NewError(ErrConflict, message)
}

// KindOf 返回业务错误的类别，不是业务错误则返回空字符串。
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
