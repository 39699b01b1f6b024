package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"authcore/internal/domain/model"
	"authcore/internal/repository"
)

// 自動生成usernameの試行回数
const usernameAttempts = 5

var usernameUnsafe = regexp.MustCompile(`[^a-z0-9_]+`)

// FederatedLogin は外部IdPの認可コードでログインする。
// 初回はユーザーを作り、IsNewUser=trueを返す。
func (s *SessionService) FederatedLogin(ctx context.Context, code string, requestedRole model.Role) (AuthResult, error) {
	if strings.TrimSpace(code) == "" {
		return AuthResult{}, ErrInvalidAuthorizationCode
	}
	if requestedRole != "" && requestedRole != model.RoleMember && requestedRole != model.RoleCreator {
		return AuthResult{}, ErrRoleNotAllowed
	}

	ident, err := s.federation.Exchange(ctx, code)
	if err != nil {
		if errors.Is(err, model.ErrExternalIdentityRejected) {
			return AuthResult{}, ErrInvalidAuthorizationCode
		}
		return AuthResult{}, fmt.Errorf("federation exchange: %w", err)
	}

	email := normalize(ident.Email)
	if email == "" || ident.Subject == "" || !ident.EmailVerified {
		return AuthResult{}, ErrInvalidAuthorizationCode.WithMessage("provider did not return a verified email")
	}

	user, isNew, err := s.resolveFederatedUser(ctx, ident, email, requestedRole)
	if err != nil {
		return AuthResult{}, err
	}

	// ロール変更より前に弾く（停止アカウントは書き換えない）
	if !user.IsActive {
		return AuthResult{}, ErrAccountDeactivated
	}

	if requestedRole == model.RoleCreator {
		if err := s.promoteToCreator(ctx, user); err != nil {
			return AuthResult{}, err
		}
	}

	return s.startSession(ctx, user, isNew)
}

func (s *SessionService) resolveFederatedUser(ctx context.Context, ident model.ExternalIdentity, email string, requestedRole model.Role) (*model.User, bool, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		// パスワードだけのアカウントをメール一致で乗っ取らせない
		if !user.IsFederated() || *user.ExternalID != ident.Subject {
			return nil, false, ErrFederatedEmailConflict
		}
		return user, false, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, false, err
	}

	// usernameだけが同時登録で取られた場合は、末尾を変えて作り直す
	for attempt := 0; attempt < usernameAttempts; attempt++ {
		user, err = s.createFederatedUser(ctx, ident, email, requestedRole, attempt > 0)
		if !errors.Is(err, repository.ErrDuplicateUsername) {
			break
		}
	}
	if err == nil {
		return user, true, nil
	}

	// 同時に初回ログインした別リクエストが先に作った
	switch {
	case errors.Is(err, repository.ErrDuplicateEmail):
		user, ferr := s.users.FindByEmail(ctx, email)
		if ferr != nil {
			return nil, false, ferr
		}
		if !user.IsFederated() || *user.ExternalID != ident.Subject {
			return nil, false, ErrFederatedEmailConflict
		}
		return user, false, nil
	case errors.Is(err, repository.ErrDuplicateExternal):
		// どちらの一意制約が先に効くかはDB次第。同じ本人なら既存ユーザーを使う
		user, ferr := s.users.FindByExternalID(ctx, ident.Subject)
		if ferr != nil {
			if errors.Is(ferr, repository.ErrUserNotFound) {
				return nil, false, ErrFederatedEmailConflict
			}
			return nil, false, ferr
		}
		if user.Email != email {
			return nil, false, ErrFederatedEmailConflict
		}
		return user, false, nil
	}
	return nil, false, mapDuplicate(err)
}

func (s *SessionService) createFederatedUser(ctx context.Context, ident model.ExternalIdentity, email string, requestedRole model.Role, suffixed bool) (*model.User, error) {
	username, err := s.pickUsername(ctx, email, suffixed)
	if err != nil {
		return nil, err
	}

	// 形をそろえるためにランダムなパスワードハッシュを入れておく
	random, err := unusablePassword()
	if err != nil {
		return nil, err
	}
	hashed, err := s.hasher.Hash(random)
	if err != nil {
		return nil, err
	}

	role := model.RoleMember
	if requestedRole == model.RoleCreator {
		role = model.RoleCreator
	}

	displayName := strings.TrimSpace(ident.DisplayName)
	if displayName == "" {
		displayName = username
	}
	if len([]rune(displayName)) > 50 {
		displayName = string([]rune(displayName)[:50])
	}

	subject := ident.Subject
	now := s.clock.Now()
	user := &model.User{
		ID:              s.idGen.NewID(),
		Email:           email,
		Username:        username,
		DisplayName:     displayName,
		AvatarURL:       ident.AvatarURL,
		PasswordHash:    hashed,
		Role:            role,
		IsActive:        true,
		IsEmailVerified: true,
		ExternalID:      &subject,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

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
		return nil, err
	}

	s.publishSignedUp(ctx, user)
	s.publishPageCreated(ctx, page)
	return user, nil
}

// member→creatorに上げて、ページが無ければ作る。
// 既にcreator/adminならロールはそのまま
func (s *SessionService) promoteToCreator(ctx context.Context, user *model.User) error {
	var page *model.CreatorPage
	err := s.tx.WithinTx(ctx, func(r repository.TxRepos) error {
		if user.Role == model.RoleMember {
			user.Role = model.RoleCreator
			user.UpdatedAt = s.clock.Now()
			if err := r.Users().Update(ctx, user); err != nil {
				return err
			}
		}
		var perr error
		page, perr = s.ensureCreatorPage(ctx, r.CreatorPages(), user)
		return perr
	})
	if err != nil {
		return err
	}

	s.publishPageCreated(ctx, page)
	return nil
}

// メールのローカル部からusernameを作る。使用済みなら末尾に乱数を足す。
// suffixed=trueなら最初から乱数付き
func (s *SessionService) pickUsername(ctx context.Context, email string, suffixed bool) (string, error) {
	local := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		local = email[:at]
	}
	base := usernameUnsafe.ReplaceAllString(local, "_")
	base = strings.Trim(base, "_")
	if len(base) < 3 {
		base = "user_" + base
	}
	if len(base) > 20 {
		base = base[:20]
	}

	candidate := base
	if suffixed {
		candidate = s.suffixedUsername(base)
	}
	for i := 0; i < usernameAttempts; i++ {
		taken, err := s.users.ExistsByUsername(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = s.suffixedUsername(base)
	}
	return "", ErrDuplicateUsername
}

func (s *SessionService) suffixedUsername(base string) string {
	suffix := strings.ReplaceAll(s.idGen.NewID(), "-", "")
	if len(suffix) > 6 {
		suffix = suffix[:6]
	}
	return base + "_" + suffix
}
