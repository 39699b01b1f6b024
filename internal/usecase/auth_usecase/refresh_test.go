package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"authcore/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefresh_RotatesAndConsumesOnce(t *testing.T) {
	h := newHarness(t)
	res := h.signup(t, "rot@x.com", "rot_user", model.RoleMember)
	ctx := context.Background()

	rotated, err := h.svc.Refresh(ctx, res.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, res.Tokens.RefreshToken, rotated.Tokens.RefreshToken)
	assert.Equal(t, res.User.ID, rotated.User.ID)
	assert.Empty(t, rotated.User.PasswordHash)

	// 同じトークンの再利用は失敗
	_, err = h.svc.Refresh(ctx, res.Tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// 新しい方は使える
	_, err = h.svc.Refresh(ctx, rotated.Tokens.RefreshToken)
	assert.NoError(t, err)

	// 台帳には常に最新の1件だけ
	assert.Equal(t, int64(1), h.tokenCount(t, res.User.ID))
}

func TestRefresh_Expired_ThenInvalid(t *testing.T) {
	h := newHarness(t)
	res := h.signup(t, "old@x.com", "old_user", model.RoleMember)
	ctx := context.Background()

	h.clock.Advance(DefaultRefreshTokenTTL + time.Second)

	_, err := h.svc.Refresh(ctx, res.Tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenExpired)

	// 期限切れの行は消費済み
	assert.Equal(t, int64(0), h.tokenCount(t, res.User.ID))

	_, err = h.svc.Refresh(ctx, res.Tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefresh_ExactlyAtExpiry_Expired(t *testing.T) {
	h := newHarness(t)
	res := h.signup(t, "edge@x.com", "edge_user", model.RoleMember)

	h.clock.Advance(DefaultRefreshTokenTTL)

	_, err := h.svc.Refresh(context.Background(), res.Tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestRefresh_UnknownToken_Invalid(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.Refresh(context.Background(), "deadbeef")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefresh_EmptyToken_Unauthorized(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.Refresh(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.False(t, errors.Is(err, ErrInvalidToken))
}

func TestRefresh_DeactivatedUser_Unauthorized(t *testing.T) {
	h := newHarness(t)
	res := h.signup(t, "banned@x.com", "banned", model.RoleMember)
	h.deactivate(t, res.User.ID)

	_, err := h.svc.Refresh(context.Background(), res.Tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

// 同じトークンを同時にN回使っても成功は1回だけ
func TestRefresh_ConcurrentRotation_SingleWinner(t *testing.T) {
	h := newHarness(t)
	res := h.signup(t, "race@x.com", "race_user", model.RoleMember)

	const n = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		invalids  int
	)
	start := make(chan struct{})

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := h.svc.Refresh(context.Background(), res.Tokens.RefreshToken)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrInvalidToken):
				invalids++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, n-1, invalids)
	assert.Equal(t, int64(1), h.tokenCount(t, res.User.ID))
}

func TestPruneExpiredTokens_RemovesOnlyExpired(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	old := h.signup(t, "p1@x.com", "p1_user", model.RoleMember)
	h.clock.Advance(24 * time.Hour)
	fresh := h.signup(t, "p2@x.com", "p2_user", model.RoleMember)

	// oldだけ期限を過ぎる
	h.clock.Advance(DefaultRefreshTokenTTL - 12*time.Hour)

	n, err := h.svc.PruneExpiredTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, int64(0), h.tokenCount(t, old.User.ID))
	assert.Equal(t, int64(1), h.tokenCount(t, fresh.User.ID))

	_, err = h.svc.Refresh(ctx, fresh.Tokens.RefreshToken)
	assert.NoError(t, err)
}
