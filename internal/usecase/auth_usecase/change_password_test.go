package auth

import (
	"context"
	"testing"
	"time"

	"authcore/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestChangePassword_InvalidatesOldPasswordAndSessions(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	a := h.signup(t, "cp@x.com", "cp_user", model.RoleMember)
	b, err := h.svc.Login(ctx, "cp@x.com", "Password123!")
	require.NoError(t, err)

	require.NoError(t, h.svc.ChangePassword(ctx, a.User.ID, "Password123!", "NewPassword456?"))

	_, err = h.svc.Login(ctx, "cp@x.com", "Password123!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = h.svc.Refresh(ctx, a.Tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = h.svc.Refresh(ctx, b.Tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	fresh, err := h.svc.Login(ctx, "cp@x.com", "NewPassword456?")
	require.NoError(t, err)
	_, err = h.svc.Refresh(ctx, fresh.Tokens.RefreshToken)
	assert.NoError(t, err)
}

func TestChangePassword_WrongCurrent_NothingChanges(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	a := h.signup(t, "keep@x.com", "keep_user", model.RoleMember)

	err := h.svc.ChangePassword(ctx, a.User.ID, "Nope123!", "NewPassword456?")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = h.svc.Login(ctx, "keep@x.com", "Password123!")
	assert.NoError(t, err)
	_, err = h.svc.Refresh(ctx, a.Tokens.RefreshToken)
	assert.NoError(t, err)
}

func TestChangePassword_FederatedAccount_Forbidden(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.fed.On("Exchange", mock.Anything, "code").Return(googleIdentity("sub-cp", "fedcp@gmail.com"), nil)
	res, err := h.svc.FederatedLogin(ctx, "code", "")
	require.NoError(t, err)

	err = h.svc.ChangePassword(ctx, res.User.ID, "whatever", "NewPassword456?")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestChangePassword_UnknownUser_NotFound(t *testing.T) {
	h := newHarness(t)

	err := h.svc.ChangePassword(context.Background(), "00000000-0000-0000-0000-000000000000", "Password123!", "NewPassword456?")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestChangePassword_StampsUpdatedAtFromClock(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	a := h.signup(t, "stamp@x.com", "stamp_user", model.RoleMember)

	h.clock.Advance(3 * time.Hour)
	require.NoError(t, h.svc.ChangePassword(ctx, a.User.ID, "Password123!", "NewPassword456?"))

	got, err := h.users.FindByID(ctx, a.User.ID)
	require.NoError(t, err)
	assert.True(t, h.clock.Now().Equal(got.UpdatedAt))
}
