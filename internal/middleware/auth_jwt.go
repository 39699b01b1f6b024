package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// RequireAuth は認証必須。失敗はエラーとして返し、HTTPErrorHandlerがJSONにする
func RequireAuth(g *Guard) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ac, err := g.Resolve(c.Request())
			if err != nil {
				return err
			}

			req := c.Request()
			c.SetRequest(req.WithContext(WithAuth(req.Context(), ac)))
			return next(c)
		}
	}
}

// OptionalAuth は解決できればAuthContextを載せ、失敗しても未ログインとして続ける
func OptionalAuth(g *Guard) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			ac, err := g.Resolve(req)
			if err != nil {
				zerolog.Ctx(req.Context()).Debug().Err(err).Msg("optional auth skipped")
				return next(c)
			}

			c.SetRequest(req.WithContext(WithAuth(req.Context(), ac)))
			return next(c)
		}
	}
}

// ハンドラ用
func AuthFrom(c echo.Context) (AuthContext, bool) {
	return AuthFromContext(c.Request().Context())
}
