package auth

import (
	"context"
	"testing"

	"authcore/internal/domain/model"
	"authcore/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLogin_Success(t *testing.T) {
	h := newHarness(t)
	h.signup(t, "login@x.com", "login_user", model.RoleMember)

	res, err := h.svc.Login(context.Background(), "LOGIN@x.com", "Password123!")
	require.NoError(t, err)

	assert.False(t, res.IsNewUser)
	assert.Equal(t, "login@x.com", res.User.Email)
	assert.Empty(t, res.User.PasswordHash)
	require.NotNil(t, res.User.LastLoginAt)

	claims, err := h.issuer.Verify(res.Tokens.AccessToken, h.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.Subject)
	assert.Equal(t, model.RoleMember, claims.Role)
}

func TestLogin_EachLoginIssuesDistinctPair(t *testing.T) {
	h := newHarness(t)
	signedUp := h.signup(t, "pair@x.com", "pair_user", model.RoleMember)

	first, err := h.svc.Login(context.Background(), "pair@x.com", "Password123!")
	require.NoError(t, err)
	second, err := h.svc.Login(context.Background(), "pair@x.com", "Password123!")
	require.NoError(t, err)

	assert.NotEqual(t, signedUp.Tokens.RefreshToken, first.Tokens.RefreshToken)
	assert.NotEqual(t, first.Tokens.RefreshToken, second.Tokens.RefreshToken)
	assert.Equal(t, int64(3), h.tokenCount(t, signedUp.User.ID))
}

// 存在しないメールとパスワード違いは同じエラー・同じメッセージ
func TestLogin_WrongPasswordAndUnknownEmail_AreIndistinguishable(t *testing.T) {
	h := newHarness(t)
	h.signup(t, "known@x.com", "known", model.RoleMember)

	_, wrongPw := h.svc.Login(context.Background(), "known@x.com", "Wrong123!")
	_, unknown := h.svc.Login(context.Background(), "nobody@x.com", "Password123!")

	assert.ErrorIs(t, wrongPw, ErrInvalidCredentials)
	assert.ErrorIs(t, unknown, ErrInvalidCredentials)
	assert.Equal(t, wrongPw.Error(), unknown.Error())
}

func TestLogin_Deactivated_Forbidden(t *testing.T) {
	h := newHarness(t)
	res := h.signup(t, "off@x.com", "off_user", model.RoleMember)
	h.deactivate(t, res.User.ID)

	_, err := h.svc.Login(context.Background(), "off@x.com", "Password123!")
	assert.ErrorIs(t, err, ErrAccountDeactivated)
}

func TestLogin_FederatedAccount_ToldToUseFederatedLogin(t *testing.T) {
	h := newHarness(t)
	h.fed.On("Exchange", mock.Anything, "code-1").Return(googleIdentity("sub-1", "fed@x.com"), nil)

	_, err := h.svc.FederatedLogin(context.Background(), "code-1", "")
	require.NoError(t, err)

	_, err = h.svc.Login(context.Background(), "fed@x.com", "Password123!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	ae, ok := usecase.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, ErrUseFederatedLogin.Message, ae.Message)
}
