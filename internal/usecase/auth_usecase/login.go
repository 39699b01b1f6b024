package auth

import (
	"context"
	"errors"

	"authcore/internal/repository"
)

// Login はメールとパスワードでログインする。
func (s *SessionService) Login(ctx context.Context, email string, password string) (AuthResult, error) {
	//emailでユーザー取得（password_hash込み）
	user, err := s.users.FindByEmail(ctx, normalize(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}

	//停止ユーザーはログイン不可
	if !user.IsActive {
		return AuthResult{}, ErrAccountDeactivated
	}

	//パスワード照合
	if !s.hasher.Verify(password, user.PasswordHash) {
		// 連携アカウントだけはGoogleログインへ誘導する
		if user.IsFederated() {
			return AuthResult{}, ErrUseFederatedLogin
		}
		return AuthResult{}, ErrInvalidCredentials
	}

	return s.startSession(ctx, user, false)
}
