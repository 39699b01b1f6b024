package auth

import (
	"context"
	"errors"
	"fmt"

	"authcore/internal/repository"
)

// ChangePassword はパスワードを変えて、そのユーザーのリフレッシュトークンを全部消す。
// 発行済みのアクセストークンは自然に切れるまで有効のまま。
func (s *SessionService) ChangePassword(ctx context.Context, userID string, currentPassword string, newPassword string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	// Googleだけのアカウントはパスワードを持たない
	if user.IsFederated() {
		return ErrFederationOnly
	}

	if !s.hasher.Verify(currentPassword, user.PasswordHash) {
		return ErrInvalidCredentials.WithMessage("current password is incorrect")
	}

	hashed, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	// ハッシュ更新と台帳の全削除は同じTxで行う
	err = s.tx.WithinTx(ctx, func(r repository.TxRepos) error {
		if err := r.Users().UpdatePassword(ctx, user.ID, hashed, s.clock.Now()); err != nil {
			return err
		}
		if _, err := r.RefreshTokens().DeleteAllByUserID(ctx, user.ID); err != nil {
			return fmt.Errorf("revoke refresh tokens: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info().Str("user_id", user.ID).Msg("password changed, sessions revoked")
	return nil
}
