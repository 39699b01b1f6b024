package model

import "time"

// 認証の主体となるユーザー。
// email / username は小文字に正規化して保存する。
type User struct {
	ID              string     `gorm:"type:uuid;primaryKey" json:"id"`
	Email           string     `gorm:"type:varchar(255);not null;uniqueIndex:idx_users_email" json:"email"`
	Username        string     `gorm:"type:varchar(30);not null;uniqueIndex:idx_users_username" json:"username"`
	DisplayName     string     `gorm:"type:varchar(50);not null" json:"displayName"`
	AvatarURL       string     `gorm:"type:text" json:"avatarUrl,omitempty"`
	PasswordHash    string     `gorm:"column:password_hash;not null" json:"-"`
	Role            Role       `gorm:"type:varchar(20);not null;default:'member'" json:"role"`
	IsActive        bool       `gorm:"not null;default:true" json:"isActive"`
	IsEmailVerified bool       `gorm:"not null;default:false" json:"isEmailVerified"`
	ExternalID      *string    `gorm:"type:varchar(255);uniqueIndex:idx_users_external_id" json:"-"`
	LastLoginAt     *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt       time.Time  `gorm:"not null" json:"createdAt"`
	UpdatedAt       time.Time  `gorm:"not null" json:"updatedAt"`
}

// 外部IdPのIDが紐付いているか。
// 連携アカウントのパスワードはランダムで、ログインには使えない。
func (u *User) IsFederated() bool {
	return u.ExternalID != nil && *u.ExternalID != ""
}

// クライアントに返す前にパスワードハッシュを落とす。
func (u User) Sanitized() User {
	u.PasswordHash = ""
	return u
}
