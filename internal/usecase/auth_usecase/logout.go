package auth

import (
	"context"
	"strings"
)

// Logout はセッションを終わらせる。
// refreshTokenがあればその1件だけ、空ならそのユーザーの全件を消す。
// 消す行が無くても成功扱い。
func (s *SessionService) Logout(ctx context.Context, userID string, refreshToken string) error {
	if userID == "" {
		return ErrUnauthorized
	}

	if strings.TrimSpace(refreshToken) != "" {
		n, err := s.ledger.DeleteByUserAndHash(ctx, userID, HashRefreshToken(refreshToken))
		if err != nil {
			return err
		}
		s.log.Debug().Str("user_id", userID).Int64("deleted", n).Msg("logout")
		return nil
	}

	return s.LogoutAll(ctx, userID)
}

// LogoutAll は全端末からログアウトさせる。
func (s *SessionService) LogoutAll(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrUnauthorized
	}

	n, err := s.ledger.DeleteAllByUserID(ctx, userID)
	if err != nil {
		return err
	}
	s.log.Debug().Str("user_id", userID).Int64("deleted", n).Msg("logout all sessions")
	return nil
}
