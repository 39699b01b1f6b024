package handler

import (
	"net/http"
	"time"

	"authcore/internal/domain/model"
	"authcore/internal/metrics"
	"authcore/internal/middleware"
	auth "authcore/internal/usecase/auth_usecase"
	"authcore/internal/validator"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	sessions *auth.SessionService
	cookies  CookieConfig
}

// DIコンストラクタ
func NewAuthHandler(sessions *auth.SessionService, cookies CookieConfig) *AuthHandler {
	return &AuthHandler{sessions: sessions, cookies: cookies}
}

// RegisterRoutes は /auth 配下を登録する。gは /auth のグループ
func (h *AuthHandler) RegisterRoutes(g *echo.Group, guard *middleware.Guard) {
	requireAuth := middleware.RequireAuth(guard)

	g.POST("/signup", h.Signup)
	g.POST("/check-email", h.CheckEmail)
	g.POST("/login", h.Login)
	g.POST("/google", h.Google)
	g.POST("/refresh", h.Refresh)

	g.POST("/logout", h.Logout, requireAuth)
	g.POST("/logout-all", h.LogoutAll, requireAuth)
	g.GET("/me", h.Me, requireAuth)
	g.POST("/change-password", h.ChangePassword, requireAuth)
}

type signupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
	Username    string `json:"username"`
	Role        string `json:"role,omitempty"`
}

type checkEmailRequest struct {
	Email string `json:"email"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type googleRequest struct {
	Code string `json:"code"`
	Role string `json:"role,omitempty"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// セッション系のレスポンス。トークン本体はCookieだけに載せる
type sessionResponse struct {
	User                 model.User `json:"user"`
	AccessTokenExpiresAt time.Time  `json:"accessTokenExpiresAt"`
	IsNewUser            bool       `json:"isNewUser"`
}

func toSessionResponse(res auth.AuthResult) sessionResponse {
	return sessionResponse{
		User:                 res.User,
		AccessTokenExpiresAt: res.Tokens.AccessExpiresAt,
		IsNewUser:            res.IsNewUser,
	}
}

// POST /auth/signup
func (h *AuthHandler) Signup(c echo.Context) (err error) {
	defer func() { metrics.ObserveAuth("signup", outcomeOf(err)) }()

	var req signupRequest
	if err := decodeJSON(c, &req); err != nil {
		return err
	}
	role, err := validator.ValidateSignup(req.Email, req.Password, req.DisplayName, req.Username, req.Role)
	if err != nil {
		return err
	}

	res, err := h.sessions.Signup(c.Request().Context(), auth.SignupInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Username:    req.Username,
		Role:        role,
	})
	if err != nil {
		return err
	}

	h.cookies.setSession(c, res.Tokens)
	return respond(c, http.StatusCreated, toSessionResponse(res))
}

// POST /auth/check-email
func (h *AuthHandler) CheckEmail(c echo.Context) error {
	var req checkEmailRequest
	if err := decodeJSON(c, &req); err != nil {
		return err
	}
	if err := validator.ValidateCheckEmail(req.Email); err != nil {
		return err
	}

	exists, err := h.sessions.CheckEmail(c.Request().Context(), req.Email)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, map[string]bool{"exists": exists})
}

// POST /auth/login
func (h *AuthHandler) Login(c echo.Context) (err error) {
	defer func() { metrics.ObserveAuth("login", outcomeOf(err)) }()

	var req loginRequest
	if err := decodeJSON(c, &req); err != nil {
		return err
	}
	if err := validator.ValidateLogin(req.Email, req.Password); err != nil {
		return err
	}

	res, err := h.sessions.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.cookies.setSession(c, res.Tokens)
	return respond(c, http.StatusOK, toSessionResponse(res))
}

// POST /auth/google
func (h *AuthHandler) Google(c echo.Context) (err error) {
	defer func() { metrics.ObserveAuth("google", outcomeOf(err)) }()

	var req googleRequest
	if err := decodeJSON(c, &req); err != nil {
		return err
	}
	role, err := validator.ParseRequestedRole(req.Role)
	if err != nil {
		return err
	}

	res, err := h.sessions.FederatedLogin(c.Request().Context(), req.Code, role)
	if err != nil {
		return err
	}

	h.cookies.setSession(c, res.Tokens)
	return respond(c, http.StatusOK, toSessionResponse(res))
}

// POST /auth/refresh。refresh cookieを1回使って両方のcookieを差し替える
func (h *AuthHandler) Refresh(c echo.Context) (err error) {
	defer func() { metrics.ObserveAuth("refresh", outcomeOf(err)) }()

	res, err := h.sessions.Refresh(c.Request().Context(), readCookie(c, middleware.RefreshCookieName))
	if err != nil {
		return err
	}

	h.cookies.setSession(c, res.Tokens)
	return respond(c, http.StatusOK, toSessionResponse(res))
}

// POST /auth/logout。refresh cookieがあればそれだけ、無ければ全部消す
func (h *AuthHandler) Logout(c echo.Context) (err error) {
	defer func() { metrics.ObserveAuth("logout", outcomeOf(err)) }()

	ac, _ := middleware.AuthFrom(c)
	if err := h.sessions.Logout(c.Request().Context(), ac.UserID, readCookie(c, middleware.RefreshCookieName)); err != nil {
		return err
	}

	h.cookies.clearSession(c)
	return respond(c, http.StatusOK, map[string]string{"message": "logged out"})
}

// POST /auth/logout-all
func (h *AuthHandler) LogoutAll(c echo.Context) (err error) {
	defer func() { metrics.ObserveAuth("logout_all", outcomeOf(err)) }()

	ac, _ := middleware.AuthFrom(c)
	if err := h.sessions.LogoutAll(c.Request().Context(), ac.UserID); err != nil {
		return err
	}

	h.cookies.clearSession(c)
	return respond(c, http.StatusOK, map[string]string{"message": "logged out from all sessions"})
}

// GET /auth/me
func (h *AuthHandler) Me(c echo.Context) error {
	ac, _ := middleware.AuthFrom(c)

	user, err := h.sessions.Me(c.Request().Context(), ac.UserID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, map[string]model.User{"user": user})
}

// POST /auth/change-password。全セッションが失効するのでcookieも消す
func (h *AuthHandler) ChangePassword(c echo.Context) (err error) {
	defer func() { metrics.ObserveAuth("change_password", outcomeOf(err)) }()

	var req changePasswordRequest
	if err := decodeJSON(c, &req); err != nil {
		return err
	}
	if err := validator.ValidateChangePassword(req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}

	ac, _ := middleware.AuthFrom(c)
	if err := h.sessions.ChangePassword(c.Request().Context(), ac.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}

	h.cookies.clearSession(c)
	return respond(c, http.StatusOK, map[string]string{"message": "password changed"})
}
