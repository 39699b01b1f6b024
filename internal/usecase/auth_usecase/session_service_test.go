package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"authcore/internal/domain/model"
	"authcore/internal/infra/db"
	infraRepo "authcore/internal/infra/repository"
	"authcore/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testJWTSecret = "test-secret-test-secret-test-secret"

// =====================
// Mock: FederationAdapter
// =====================

type MockFederationAdapter struct {
	mock.Mock
}

func (m *MockFederationAdapter) Exchange(ctx context.Context, code string) (model.ExternalIdentity, error) {
	args := m.Called(ctx, code)
	ident, _ := args.Get(0).(model.ExternalIdentity)
	return ident, args.Error(1)
}

// =====================
// Mock: EventPublisher
// =====================

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, subject string, v any) error {
	args := m.Called(ctx, subject, v)
	return args.Error(0)
}

// =====================
// fake clock
// =====================

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// =====================
// harness
// =====================

type harness struct {
	db     *gorm.DB
	users  repository.UserRepository
	ledger repository.RefreshTokenRepository
	pages  repository.CreatorPageRepository
	clock  *fakeClock
	issuer *JWTIssuer
	fed    *MockFederationAdapter
	events *MockEventPublisher
	svc    *SessionService
}

// SQLite(in-memory)の上に本物のリポジトリを組む
func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWithUsers(t, nil)
}

// wrapでサービスに渡すUserRepositoryを差し替える。Txの中は本物のまま
func newHarnessWithUsers(t *testing.T, wrap func(repository.UserRepository) repository.UserRepository) *harness {
	t.Helper()

	gdb, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(context.Background(), gdb))
	t.Cleanup(func() { _ = db.Close(gdb) })

	h := &harness{
		db:     gdb,
		users:  infraRepo.NewUserGormRepository(gdb),
		ledger: infraRepo.NewRefreshTokenRepository(gdb),
		pages:  infraRepo.NewCreatorPageGormRepository(gdb),
		clock:  newFakeClock(),
		issuer: NewJWTIssuer(testJWTSecret, DefaultAccessTokenTTL),
		fed:    &MockFederationAdapter{},
		events: &MockEventPublisher{},
	}
	h.events.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	users := h.users
	if wrap != nil {
		users = wrap(users)
	}

	tokens := NewTokenService(h.users, h.ledger, h.issuer, UUIDGenerator{}, h.clock, DefaultRefreshTokenTTL)
	h.svc = NewSessionService(SessionDeps{
		Users:      users,
		Ledger:     h.ledger,
		Tx:         infraRepo.NewTxManagerGorm(gdb),
		Hasher:     NewBcryptPasswordHasher(bcrypt.MinCost),
		Tokens:     tokens,
		Federation: h.fed,
		Events:     h.events,
		Clock:      h.clock,
		Logger:     zerolog.Nop(),
	})
	return h
}

// 事前の存在チェックを常に「無し」と答える。
// 同時登録で相手が先にコミットした状況を再現する
type racingUserRepository struct {
	repository.UserRepository
}

func (racingUserRepository) ExistsByEmail(context.Context, string) (bool, error) {
	return false, nil
}

func (racingUserRepository) ExistsByUsername(context.Context, string) (bool, error) {
	return false, nil
}

func racing(r repository.UserRepository) repository.UserRepository {
	return racingUserRepository{UserRepository: r}
}

func (h *harness) signup(t *testing.T, email, username string, role model.Role) AuthResult {
	t.Helper()

	res, err := h.svc.Signup(context.Background(), SignupInput{
		Email:       email,
		Password:    "Password123!",
		DisplayName: "Test User",
		Username:    username,
		Role:        role,
	})
	require.NoError(t, err)
	return res
}

func (h *harness) deactivate(t *testing.T, userID string) {
	t.Helper()

	u, err := h.users.FindByID(context.Background(), userID)
	require.NoError(t, err)
	u.IsActive = false
	require.NoError(t, h.users.Update(context.Background(), u))
}

func (h *harness) tokenCount(t *testing.T, userID string) int64 {
	t.Helper()

	var n int64
	require.NoError(t, h.db.Model(&model.RefreshToken{}).Where("user_id = ?", userID).Count(&n).Error)
	return n
}

// =====================
// tests
// =====================

func TestMe_ReturnsSanitizedUser(t *testing.T) {
	h := newHarness(t)
	res := h.signup(t, "me@x.com", "me_user", model.RoleMember)

	got, err := h.svc.Me(context.Background(), res.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "me@x.com", got.Email)
	assert.Empty(t, got.PasswordHash)
}

func TestMe_UnknownUser_NotFound(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.Me(context.Background(), "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestMe_EmptyUserID_Unauthorized(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.Me(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

// signup → login → 各トークンが独立して有効
func TestScenario_SignupThenLogin_SessionsAreIndependent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	signedUp, err := h.svc.Signup(ctx, SignupInput{
		Email:       "a@x.com",
		Password:    "Password123!",
		DisplayName: "A",
		Username:    "a_user",
		Role:        model.RoleMember,
	})
	require.NoError(t, err)
	assert.True(t, signedUp.IsNewUser)

	loggedIn, err := h.svc.Login(ctx, "a@x.com", "Password123!")
	require.NoError(t, err)
	assert.NotEqual(t, signedUp.Tokens.RefreshToken, loggedIn.Tokens.RefreshToken)
	assert.False(t, loggedIn.IsNewUser)

	// signup時のトークンはloginでは消費されていない
	rotated, err := h.svc.Refresh(ctx, signedUp.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, signedUp.User.ID, rotated.User.ID)

	// 使ったものだけが失敗する
	_, err = h.svc.Refresh(ctx, signedUp.Tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = h.svc.Refresh(ctx, loggedIn.Tokens.RefreshToken)
	assert.NoError(t, err)
}
