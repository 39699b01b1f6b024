package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"authcore/internal/domain/model"
	"authcore/internal/repository"
	auth "authcore/internal/usecase/auth_usecase"
)

const (
	AccessCookieName  = "access_token"
	RefreshCookieName = "refresh_token"
)

// 認証済みリクエストの主体。ガードが作って、以降は読むだけ
type AuthContext struct {
	UserID          string
	Email           string
	Role            model.Role
	IsEmailVerified bool
}

// Guard はリクエストからAuthContextを解決する。
type Guard struct {
	issuer auth.AccessTokenIssuer
	users  repository.UserRepository
	clock  auth.Clock
}

func NewGuard(issuer auth.AccessTokenIssuer, users repository.UserRepository, clock auth.Clock) *Guard {
	if clock == nil {
		clock = auth.SystemClock{}
	}
	return &Guard{issuer: issuer, users: users, clock: clock}
}

// Resolve はトークンを検証し、ユーザーをDBから取り直す（署名だけは信用しない）。
// トークン無し・不正・期限切れはそれぞれ別のエラーを返す。
func (g *Guard) Resolve(r *http.Request) (AuthContext, error) {
	raw := extractToken(r)
	if raw == "" {
		return AuthContext{}, auth.ErrMissingToken
	}

	claims, err := g.issuer.Verify(raw, g.clock.Now())
	if err != nil {
		return AuthContext{}, err
	}

	user, err := g.users.FindByID(r.Context(), claims.Subject)
	if err != nil {
		// 署名は正しいが本人が消えている。診断用にUnauthorizedと分ける
		if errors.Is(err, repository.ErrUserNotFound) {
			return AuthContext{}, auth.ErrUserNotFound
		}
		return AuthContext{}, err
	}

	//停止ユーザー
	if !user.IsActive {
		return AuthContext{}, auth.ErrAccountDeactivated
	}

	return AuthContext{
		UserID:          user.ID,
		Email:           user.Email,
		Role:            user.Role,
		IsEmailVerified: user.IsEmailVerified,
	}, nil
}

// Cookieを優先し、無ければAuthorization: Bearer
func extractToken(r *http.Request) string {
	if c, err := r.Cookie(AccessCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	authz := r.Header.Get("Authorization")
	if authz == "" {
		return ""
	}
	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

type authContextKey struct{}

// WithAuth はAuthContextを載せたcontextを返す
func WithAuth(ctx context.Context, ac AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey{}, ac)
}

// AuthFromContext はcontextからAuthContextを取り出す
func AuthFromContext(ctx context.Context) (AuthContext, bool) {
	ac, ok := ctx.Value(authContextKey{}).(AuthContext)
	return ac, ok
}
