package repository

import (
	"authcore/internal/domain/model"
	"context"
	"errors"
	"time"
)

var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// リフレッシュトークン台帳の保存・消費・削除
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	// token_hashに一致する行を取り出して削除する。
	// 同じトークンで同時に呼ばれても、行を受け取れるのは1回だけ。
	// 見つからなければErrRefreshTokenNotFound。
	Consume(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	// 1台だけログアウト。0件でもエラーにしない
	DeleteByUserAndHash(ctx context.Context, userID string, tokenHash string) (int64, error)
	// 全端末ログアウト・パスワード変更時。0件でもエラーにしない
	DeleteAllByUserID(ctx context.Context, userID string) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
