package validator

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"authcore/internal/domain/model"
	"authcore/internal/usecase"
)

const (
	passwordMinLen    = 8
	passwordMaxBytes  = 72 // bcryptの上限
	displayNameMaxLen = 50
	emailMaxLen       = 254
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_]{3,30}$`)

// 入力エラーをまとめる。フィールド名→理由
type fieldErrors map[string]string

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return usecase.ErrValidation.WithDetails(f)
}

// サインアップの入力を検証。roleは空ならmember
func ValidateSignup(email, password, displayName, username, role string) (model.Role, error) {
	fe := fieldErrors{}

	if msg := checkEmail(email); msg != "" {
		fe["email"] = msg
	}
	if msg := CheckPasswordPolicy(password); msg != "" {
		fe["password"] = msg
	}

	name := strings.TrimSpace(displayName)
	if name == "" {
		fe["displayName"] = "is required"
	} else if utf8.RuneCountInString(name) > displayNameMaxLen {
		fe["displayName"] = "must be at most 50 characters"
	}

	if !usernamePattern.MatchString(strings.ToLower(strings.TrimSpace(username))) {
		fe["username"] = "must be 3-30 characters of letters, digits or underscore"
	}

	parsed := model.RoleMember
	if strings.TrimSpace(role) != "" {
		r, ok := model.ParseRole(role)
		if !ok || r == model.RoleAdmin {
			fe["role"] = "must be member or creator"
		} else {
			parsed = r
		}
	}

	return parsed, fe.err()
}

// ログインの入力を検証
func ValidateLogin(email, password string) error {
	fe := fieldErrors{}
	if msg := checkEmail(email); msg != "" {
		fe["email"] = msg
	}
	if password == "" {
		fe["password"] = "is required"
	}
	return fe.err()
}

func ValidateCheckEmail(email string) error {
	fe := fieldErrors{}
	if msg := checkEmail(email); msg != "" {
		fe["email"] = msg
	}
	return fe.err()
}

// パスワード変更の入力を検証
func ValidateChangePassword(currentPassword, newPassword string) error {
	fe := fieldErrors{}
	if currentPassword == "" {
		fe["currentPassword"] = "is required"
	}
	if msg := CheckPasswordPolicy(newPassword); msg != "" {
		fe["newPassword"] = msg
	}
	return fe.err()
}

// Google ログインのroleを読む。空ならmember扱い（昇格なし）
func ParseRequestedRole(role string) (model.Role, error) {
	if strings.TrimSpace(role) == "" {
		return "", nil
	}
	r, ok := model.ParseRole(role)
	if !ok || r == model.RoleAdmin {
		return "", usecase.ErrValidation.WithDetails(map[string]string{"role": "must be member or creator"})
	}
	return r, nil
}

// パスワードポリシー：8文字以上、大文字・数字・記号を各1つ以上。
// 違反なら理由、OKなら空文字
func CheckPasswordPolicy(password string) string {
	if utf8.RuneCountInString(password) < passwordMinLen {
		return "must be at least 8 characters"
	}
	if len(password) > passwordMaxBytes {
		return "must be at most 72 bytes"
	}

	var upper, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}

	switch {
	case !upper:
		return "must contain an uppercase letter"
	case !digit:
		return "must contain a digit"
	case !special:
		return "must contain a special character"
	}
	return ""
}

// メールチェック
func checkEmail(email string) string {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return "is required"
	}
	if len(trimmed) > emailMaxLen {
		return "is too long"
	}
	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Address != trimmed {
		return "is not a valid email address"
	}
	if !strings.Contains(addr.Address[strings.LastIndexByte(addr.Address, '@')+1:], ".") {
		return "is not a valid email address"
	}
	return ""
}
