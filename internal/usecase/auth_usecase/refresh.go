package auth

import (
	"context"
	"strings"
)

// Refresh はリフレッシュトークンを1回だけ使って新しい組を返す。
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (AuthResult, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return AuthResult{}, ErrMissingToken
	}

	pair, user, err := s.tokens.Rotate(ctx, refreshToken)
	if err != nil {
		return AuthResult{}, err
	}

	return AuthResult{
		User:   user.Sanitized(),
		Tokens: pair,
	}, nil
}

// PruneExpiredTokens は期限切れのリフレッシュトークンを掃除する。
func (s *SessionService) PruneExpiredTokens(ctx context.Context) (int64, error) {
	return s.tokens.PruneExpired(ctx)
}
