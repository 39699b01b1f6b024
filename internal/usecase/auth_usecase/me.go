package auth

import (
	"context"
	"errors"

	"authcore/internal/domain/model"
	"authcore/internal/repository"
)

// Me はログイン中のユーザーを返す。
func (s *SessionService) Me(ctx context.Context, userID string) (model.User, error) {
	if userID == "" {
		return model.User{}, ErrUnauthorized
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, err
	}

	return user.Sanitized(), nil
}
