package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"authcore/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const codeInternal = "INTERNAL_ERROR"

type envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// 成功レスポンス
func respond(c echo.Context, status int, data any) error {
	return c.JSON(status, envelope{Success: true, Data: data})
}

// ErrorHandler はecho全体のエラー変換。
// AppErrorはそのまま、echoのHTTPErrorはステータスだけ拾い、それ以外は500で中身を隠す
func ErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := translate(err)
		if status == http.StatusInternalServerError {
			logger.Error().Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Msg("unexpected error")
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, envelope{Success: false, Error: &body})
	}
}

func translate(err error) (int, errorBody) {
	if ae, ok := usecase.AsAppError(err); ok {
		return ae.Status(), errorBody{Code: ae.Code, Message: ae.Message, Details: ae.Details}
	}

	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code < http.StatusInternalServerError {
		return he.Code, errorBody{Code: codeForStatus(he.Code), Message: http.StatusText(he.Code)}
	}

	return http.StatusInternalServerError, errorBody{Code: codeInternal, Message: "internal server error"}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return usecase.ErrValidation.Code
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	default:
		return "HTTP_ERROR"
	}
}

// outcomeOf はメトリクス用のラベル
func outcomeOf(err error) string {
	if err == nil {
		return "success"
	}
	if ae, ok := usecase.AsAppError(err); ok {
		return ae.Code
	}
	return codeInternal
}

// リクエストボディのJSONを読み取り。壊れていたらVALIDATION_ERROR
func decodeJSON(c echo.Context, dst any) error {
	dec := json.NewDecoder(c.Request().Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return usecase.ErrValidation.WithMessage("request body is required")
		}
		return usecase.ErrValidation.WithMessage("malformed JSON body")
	}
	return nil
}
