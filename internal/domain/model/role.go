package model

import "strings"

type Role string

const (
	RoleMember  Role = "member"
	RoleCreator Role = "creator"
	RoleAdmin   Role = "admin"
)

// 操作単位の権限
type Permission string

const (
	PermContentRead     Permission = "content:read"
	PermCommentWrite    Permission = "comment:write"
	PermProfileUpdate   Permission = "profile:update"
	PermContentCreate   Permission = "content:create"
	PermContentPublish  Permission = "content:publish"
	PermPageManage      Permission = "page:manage"
	PermAnalyticsView   Permission = "analytics:view"
	PermContentModerate Permission = "content:moderate"
	PermUserManage      Permission = "user:manage"
)

// ロールごとの権限表。起動後に書き換えない。
var rolePermissions = map[Role]map[Permission]struct{}{
	RoleMember: set(
		PermContentRead,
		PermCommentWrite,
		PermProfileUpdate,
	),
	RoleCreator: set(
		PermContentRead,
		PermCommentWrite,
		PermProfileUpdate,
		PermContentCreate,
		PermContentPublish,
		PermPageManage,
		PermAnalyticsView,
	),
	RoleAdmin: set(
		PermContentRead,
		PermCommentWrite,
		PermProfileUpdate,
		PermContentCreate,
		PermContentPublish,
		PermPageManage,
		PermAnalyticsView,
		PermContentModerate,
		PermUserManage,
	),
}

func set(perms ...Permission) map[Permission]struct{} {
	m := make(map[Permission]struct{}, len(perms))
	for _, p := range perms {
		m[p] = struct{}{}
	}
	return m
}

// ParseRole は大文字小文字を無視してロールを読む。
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := rolePermissions[r]; !ok {
		return "", false
	}
	return r, true
}

// HasPermission はロールが権限を持っているかを返す。I/Oなし。
func HasPermission(role Role, perm Permission) bool {
	perms, ok := rolePermissions[role]
	if !ok {
		return false
	}
	_, ok = perms[perm]
	return ok
}
