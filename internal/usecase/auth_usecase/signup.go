package auth

import (
	"context"

	"authcore/internal/domain/model"
	"authcore/internal/repository"
)

// 会員登録の入力（形式チェックはhandler側のvalidatorで済んでいる前提）
type SignupInput struct {
	Email       string
	Password    string
	DisplayName string
	Username    string
	Role        model.Role
}

// Signup は会員登録してそのままログイン状態にする。
func (s *SessionService) Signup(ctx context.Context, in SignupInput) (AuthResult, error) {
	email := normalize(in.Email)
	username := normalize(in.Username)

	// 初期はmember。adminは自分で選べない
	role := in.Role
	if role == "" {
		role = model.RoleMember
	}
	if role != model.RoleMember && role != model.RoleCreator {
		return AuthResult{}, ErrRoleNotAllowed
	}

	// email重複チェック
	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return AuthResult{}, err
	}
	if exists {
		return AuthResult{}, ErrDuplicateEmail
	}

	// username重複チェック
	taken, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return AuthResult{}, err
	}
	if taken {
		return AuthResult{}, ErrDuplicateUsername
	}

	// パスワードをハッシュ化（保存の直前で明示的に）
	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return AuthResult{}, err
	}

	now := s.clock.Now()
	user := &model.User{
		ID:           s.idGen.NewID(),
		Email:        email,
		Username:     username,
		DisplayName:  in.DisplayName,
		PasswordHash: hashed,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// ユーザーとクリエイターページは同じTxで作る。
	// 事前チェックをすり抜けた同時登録は一意制約で落ちる
	var page *model.CreatorPage
	err = s.tx.WithinTx(ctx, func(r repository.TxRepos) error {
		if err := r.Users().Create(ctx, user); err != nil {
			return err
		}
		if role != model.RoleCreator {
			return nil
		}
		var perr error
		page, perr = s.ensureCreatorPage(ctx, r.CreatorPages(), user)
		return perr
	})
	if err != nil {
		return AuthResult{}, mapDuplicate(err)
	}

	s.publishSignedUp(ctx, user)
	s.publishPageCreated(ctx, page)

	return s.startSession(ctx, user, true)
}

// CheckEmail は登録済みかどうかだけを返す。
func (s *SessionService) CheckEmail(ctx context.Context, email string) (bool, error) {
	return s.users.ExistsByEmail(ctx, normalize(email))
}
