package repository

import (
	"context"
	"errors"
	"time"

	"authcore/internal/domain/model"
	repo "authcore/internal/repository"

	"gorm.io/gorm"
)

type refreshTokenGormRepository struct {
	db *gorm.DB //DB接続（GORM）
}

// GORM実装
func NewRefreshTokenRepository(db *gorm.DB) repo.RefreshTokenRepository {
	return &refreshTokenGormRepository{db: db}
}

// リフレッシュトークンを保存し。
func (r *refreshTokenGormRepository) Create(ctx context.Context, token *model.RefreshToken) error {
	//タイムアウトやキャンセルをDB処理に伝える
	if err := r.db.WithContext(ctx).Create(token).Error; err != nil {
		return err
	}
	return nil
}

// token_hashで1件取り出して削除する。
// 勝者を決めるのは条件付きDELETEの件数で、SELECTではない。
// 同じ行を2つのリクエストが読んでも、1件削除できるのは片方だけ。
func (r *refreshTokenGormRepository) Consume(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	var consumed model.RefreshToken

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("token_hash = ?", tokenHash).Take(&consumed).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repo.ErrRefreshTokenNotFound
			}
			return err
		}

		res := tx.Where("id = ? AND token_hash = ?", consumed.ID, tokenHash).
			Delete(&model.RefreshToken{})
		if res.Error != nil {
			return res.Error
		}

		// 先に消されていた
		if res.RowsAffected == 0 {
			return repo.ErrRefreshTokenNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &consumed, nil
}

// 指定ユーザーの指定トークンだけ削除。
func (r *refreshTokenGormRepository) DeleteByUserAndHash(ctx context.Context, userID string, tokenHash string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND token_hash = ?", userID, tokenHash).
		Delete(&model.RefreshToken{})
	return res.RowsAffected, res.Error
}

// 指定ユーザーのリフレッシュトークンを全削除します。
func (r *refreshTokenGormRepository) DeleteAllByUserID(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.RefreshToken{})
	return res.RowsAffected, res.Error
}

// 期限切れを掃除
func (r *refreshTokenGormRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&model.RefreshToken{})
	return res.RowsAffected, res.Error
}
