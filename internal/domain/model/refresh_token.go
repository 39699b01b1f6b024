package model

import "time"

// 使い捨てのリフレッシュトークン。
// 平文はクライアントだけが持ち、DBにはSHA-256のhexを保存する。
// 消費（ローテーション・ログアウト・一括失効）は行の削除で表す。
type RefreshToken struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string    `gorm:"type:uuid;not null;index" json:"userId"`
	TokenHash string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"-"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expiresAt"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
}

// 期限切れかどうか
func (t *RefreshToken) ExpiredAt(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}
