package model

import "errors"

// 外部IdPのコード交換が拒否された（コード不正・期限切れ・メール未確認など）
var ErrExternalIdentityRejected = errors.New("external identity rejected")

// 外部IdPで確認済みのID情報
type ExternalIdentity struct {
	Provider      string
	Subject       string
	Email         string
	EmailVerified bool
	DisplayName   string
	AvatarURL     string
}
