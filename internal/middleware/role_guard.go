package middleware

import (
	"authcore/internal/domain/model"
	auth "authcore/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
)

// CheckRole はroleが許可リストにあるかを見る。I/Oなし
func CheckRole(ac AuthContext, allowed ...model.Role) error {
	for _, r := range allowed {
		if ac.Role == r {
			return nil
		}
	}
	return auth.ErrForbidden
}

// CheckPermission は権限表を見る。I/Oなし
func CheckPermission(ac AuthContext, perm model.Permission) error {
	if !model.HasPermission(ac.Role, perm) {
		return auth.ErrForbidden
	}
	return nil
}

// RequireRole はRequireAuthの後ろに置く
func RequireRole(allowed ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ac, ok := AuthFrom(c)
			if !ok {
				return auth.ErrMissingToken
			}
			if err := CheckRole(ac, allowed...); err != nil {
				return err
			}
			return next(c)
		}
	}
}

// RequirePermission はRequireAuthの後ろに置く
func RequirePermission(perm model.Permission) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ac, ok := AuthFrom(c)
			if !ok {
				return auth.ErrMissingToken
			}
			if err := CheckPermission(ac, perm); err != nil {
				return err
			}
			return next(c)
		}
	}
}
