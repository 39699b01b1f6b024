package repository

import (
	"authcore/internal/domain/model"
	"context"
	"errors"
	"time"
)

var (
	// ユーザーが見つかりませんを統一
	ErrUserNotFound = errors.New("user not found")
	// 一意制約違反（同時登録の競合もここに落ちる）
	ErrDuplicateEmail    = errors.New("duplicate email")
	ErrDuplicateUsername = errors.New("duplicate username")
	ErrDuplicateExternal = errors.New("duplicate external id")
)

// 保存・取得を約束
type UserRepository interface {
	//新規ユーザー作成。一意制約違反はErrDuplicate*に変換して返す
	Create(ctx context.Context, user *model.User) error
	// IDからユーザーを1件取得する。
	FindByID(ctx context.Context, userID string) (*model.User, error)
	//メールからユーザーを一件取得する。password_hashも含む
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	//外部IdPのIDから取得
	FindByExternalID(ctx context.Context, externalID string) (*model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// ユーザー情報の更新=>ロールの変更・外部IDの紐付けなど
	Update(ctx context.Context, user *model.User) error
	// updated_atは呼び出し側の時計で渡す
	UpdatePassword(ctx context.Context, userID string, passwordHash string, at time.Time) error
	TouchLastLogin(ctx context.Context, userID string, at time.Time) error
}
