package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	cases := []struct {
		in   string
		want Role
		ok   bool
	}{
		{"member", RoleMember, true},
		{"Creator", RoleCreator, true},
		{" ADMIN ", RoleAdmin, true},
		{"root", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseRole(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestHasPermission(t *testing.T) {
	assert.True(t, HasPermission(RoleMember, PermContentRead))
	assert.False(t, HasPermission(RoleMember, PermContentCreate))
	assert.False(t, HasPermission(RoleMember, PermUserManage))

	assert.True(t, HasPermission(RoleCreator, PermContentPublish))
	assert.True(t, HasPermission(RoleCreator, PermPageManage))
	assert.False(t, HasPermission(RoleCreator, PermContentModerate))

	assert.True(t, HasPermission(RoleAdmin, PermUserManage))
	assert.True(t, HasPermission(RoleAdmin, PermContentModerate))

	assert.False(t, HasPermission(Role("ghost"), PermContentRead))
}

// 上位ロールは下位ロールの権限を全部持つ
func TestHasPermission_RolesAreCumulative(t *testing.T) {
	for perm := range rolePermissions[RoleMember] {
		assert.True(t, HasPermission(RoleCreator, perm), perm)
	}
	for perm := range rolePermissions[RoleCreator] {
		assert.True(t, HasPermission(RoleAdmin, perm), perm)
	}
}

func TestUser_SanitizedAndFederated(t *testing.T) {
	sub := "google-sub"
	u := User{Email: "a@x.com", PasswordHash: "hash", ExternalID: &sub}

	s := u.Sanitized()
	assert.Empty(t, s.PasswordHash)
	assert.Equal(t, "hash", u.PasswordHash)
	assert.True(t, u.IsFederated())

	empty := ""
	assert.False(t, (&User{}).IsFederated())
	assert.False(t, (&User{ExternalID: &empty}).IsFederated())
}
