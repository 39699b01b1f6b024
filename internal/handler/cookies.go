package handler

import (
	"net/http"
	"time"

	"authcore/internal/middleware"
	auth "authcore/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
)

// Cookieの設定。本番はSecure + SameSite=None（別オリジンのフロントから使う）
type CookieConfig struct {
	Secure     bool
	Domain     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func (cc CookieConfig) sameSite() http.SameSite {
	if cc.Secure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

func (cc CookieConfig) cookie(name, value string, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   cc.Domain,
		MaxAge:   int(maxAge / time.Second),
		HttpOnly: true,
		Secure:   cc.Secure,
		SameSite: cc.sameSite(),
	}
}

// access/refreshをCookieにセット
func (cc CookieConfig) setSession(c echo.Context, pair auth.TokenPair) {
	c.SetCookie(cc.cookie(middleware.AccessCookieName, pair.AccessToken, cc.AccessTTL))
	c.SetCookie(cc.cookie(middleware.RefreshCookieName, pair.RefreshToken, cc.RefreshTTL))
}

// 両方消す（MaxAge<0 で Max-Age=0 が出る）
func (cc CookieConfig) clearSession(c echo.Context) {
	for _, name := range []string{middleware.AccessCookieName, middleware.RefreshCookieName} {
		ck := cc.cookie(name, "", 0)
		ck.MaxAge = -1
		ck.Expires = time.Unix(0, 0)
		c.SetCookie(ck)
	}
}

func readCookie(c echo.Context, name string) string {
	ck, err := c.Cookie(name)
	if err != nil {
		return ""
	}
	return ck.Value
}
