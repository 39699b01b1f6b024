package model

import "time"

// クリエイター用のプロフィールページ。
// 中身はコンテンツ側が管理するので、ここでは所有者との紐付けだけを持つ。
type CreatorPage struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID   string    `gorm:"type:uuid;not null;uniqueIndex" json:"ownerId"`
	Slug      string    `gorm:"type:varchar(30);not null;uniqueIndex" json:"slug"`
	Title     string    `gorm:"type:varchar(50);not null" json:"title"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
}
