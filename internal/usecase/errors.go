package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

// エラーの分類。HTTPステータスはここで決まる。
type Kind int

const (
	KindValidation Kind = iota + 1
	KindUnauthorized
	KindForbidden
	KindConflict
	KindNotFound
)

func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// AppError はusecaseが返す型付きのエラー。
// Codeは機械向け（INVALID_TOKEN など）、Messageは人向け。
type AppError struct {
	Kind    Kind
	Code    string
	Message string
	Details map[string]string
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Status() int {
	return e.Kind.Status()
}

// Codeが同じならerrors.Isで一致させる（WithDetailsでコピーしても比較できる）
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// WithDetails は詳細付きのコピーを返す
func (e *AppError) WithDetails(details map[string]string) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

// WithMessage はメッセージだけ差し替えたコピーを返す
func (e *AppError) WithMessage(msg string) *AppError {
	cp := *e
	cp.Message = msg
	return &cp
}

func NewAppError(kind Kind, code string, message string) *AppError {
	return &AppError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

func AsAppError(err error) (*AppError, bool) {
	var ae *AppError
	ok := errors.As(err, &ae)
	return ae, ok
}

// 入力エラーの共通値
var ErrValidation = NewAppError(KindValidation, "VALIDATION_ERROR", "invalid input")
