package auth

import (
	"context"
	"time"

	"authcore/internal/domain/model"

	"github.com/google/uuid"
)

// 平文パスワードからハッシュへ。照合も同じ実装で行う。
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain string, hashed string) bool
}

// アクセストークン（JWT）の発行と検証の約束
type AccessTokenIssuer interface {
	Issue(user *model.User, now time.Time) (token string, expiresAt time.Time, err error)
	Verify(token string, now time.Time) (*AccessClaims, error)
}

// 認可コードを外部IdPで確認済みのIDに交換する
type FederationAdapter interface {
	Exchange(ctx context.Context, code string) (model.ExternalIdentity, error)
}

// 下流（コンテンツ・通知など）へのイベント送信
type EventPublisher interface {
	Publish(ctx context.Context, subject string, v any) error
}

const (
	SubjectUserSignedUp       = "auth.user.signed_up"
	SubjectCreatorPageCreated = "auth.creator_page.provisioned"
)

// UUID 等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// イベント送信先が無いとき用
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error {
	return nil
}
