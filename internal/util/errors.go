package util

import (
	"errors"
	"fmt"
)

// Kind 错误类别，决定 HTTP 层的映射方式
type Kind string

const (
	KindInvalidInput    Kind = "invalid_input"
	KindNotFound        Kind = "not_found"
	KindInvalidState    Kind = "invalid_state"
	KindInvalidStep     Kind = "invalid_step"
	KindUnavailable     Kind = "unavailable"
	KindRateLimited     Kind = "rate_limited"
	KindContentFiltered Kind = "content_filtered"
	KindMalformed       Kind = "malformed"
)

// AppError 携带类别的业务错误
type AppError struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *AppError) Unwrap() error { return e.Err }

func NewError(kind Kind, msg string) *AppError {
	return &AppError{Kind: kind, Msg: msg}
}

func WrapError(kind Kind, msg string, err error) *AppError {
	return &AppError{Kind: kind, Msg: msg, Err: err}
}

// KindOf 提取错误类别，未知错误归为 unavailable
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnavailable
}

var (
	ErrEmailRegistered    = errors.New("该邮箱已被注册")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTemplateNotFound   = NewError(KindNotFound, "problem template not found or inactive")
	ErrSessionNotFound    = NewError(KindNotFound, "session not found")
	ErrSessionNotActive   = NewError(KindInvalidState, "session is not active")
	ErrStepOutOfOrder     = NewError(KindInvalidStep, "step number does not match current step")
)
