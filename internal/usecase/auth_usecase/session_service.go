package auth

import (
	"context"
	"errors"
	"strings"

	"authcore/internal/domain/model"
	"authcore/internal/repository"

	"github.com/rs/zerolog"
)

// ログイン系の結果。Userはパスワードハッシュを落としたもの。
type AuthResult struct {
	User      model.User
	Tokens    TokenPair
	IsNewUser bool
}

// SessionServiceの依存
type SessionDeps struct {
	Users      repository.UserRepository
	Ledger     repository.RefreshTokenRepository
	Tx         repository.TransactionManager
	Hasher     PasswordHasher
	Tokens     *TokenService
	Federation FederationAdapter
	Events     EventPublisher
	IDGen      IDGenerator
	Clock      Clock
	Logger     zerolog.Logger
}

// SessionService は会員登録・ログイン・ローテーション・ログアウト・パスワード変更をまとめる。
type SessionService struct {
	users      repository.UserRepository
	ledger     repository.RefreshTokenRepository
	tx         repository.TransactionManager
	hasher     PasswordHasher
	tokens     *TokenService
	federation FederationAdapter
	events     EventPublisher
	idGen      IDGenerator
	clock      Clock
	log        zerolog.Logger
}

// DI
func NewSessionService(d SessionDeps) *SessionService {
	if d.Events == nil {
		d.Events = NopPublisher{}
	}
	if d.IDGen == nil {
		d.IDGen = UUIDGenerator{}
	}
	if d.Clock == nil {
		d.Clock = SystemClock{}
	}
	return &SessionService{
		users:      d.Users,
		ledger:     d.Ledger,
		tx:         d.Tx,
		hasher:     d.Hasher,
		tokens:     d.Tokens,
		federation: d.Federation,
		events:     d.Events,
		idGen:      d.IDGen,
		clock:      d.Clock,
		log:        d.Logger,
	}
}

// トークンを発行してlast_login_atを記録する
func (s *SessionService) startSession(ctx context.Context, user *model.User, isNew bool) (AuthResult, error) {
	pair, err := s.tokens.IssuePair(ctx, user)
	if err != nil {
		return AuthResult{}, err
	}

	now := s.clock.Now()
	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		return AuthResult{}, err
	}
	user.LastLoginAt = &now

	return AuthResult{
		User:      user.Sanitized(),
		Tokens:    pair,
		IsNewUser: isNew,
	}, nil
}

// クリエイターページが無ければ作る。作ったときだけページを返す
func (s *SessionService) ensureCreatorPage(ctx context.Context, pages repository.CreatorPageRepository, user *model.User) (*model.CreatorPage, error) {
	existing, err := pages.FindByOwnerID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, nil
	}

	page := &model.CreatorPage{
		ID:        s.idGen.NewID(),
		OwnerID:   user.ID,
		Slug:      user.Username,
		Title:     user.DisplayName,
		CreatedAt: s.clock.Now(),
	}
	if err := pages.Create(ctx, page); err != nil {
		return nil, err
	}
	return page, nil
}

// 送信失敗はログだけ残す（認証の結果は変えない）
func (s *SessionService) publish(ctx context.Context, subject string, v any) {
	if err := s.events.Publish(ctx, subject, v); err != nil {
		s.log.Warn().Err(err).Str("subject", subject).Msg("publish event")
	}
}

type userEvent struct {
	UserID   string     `json:"userId"`
	Email    string     `json:"email"`
	Username string     `json:"username"`
	Role     model.Role `json:"role"`
}

type creatorPageEvent struct {
	PageID  string `json:"pageId"`
	OwnerID string `json:"ownerId"`
	Slug    string `json:"slug"`
}

func (s *SessionService) publishSignedUp(ctx context.Context, user *model.User) {
	s.publish(ctx, SubjectUserSignedUp, userEvent{
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
		Role:     user.Role,
	})
}

func (s *SessionService) publishPageCreated(ctx context.Context, page *model.CreatorPage) {
	if page == nil {
		return
	}
	s.publish(ctx, SubjectCreatorPageCreated, creatorPageEvent{
		PageID:  page.ID,
		OwnerID: page.OwnerID,
		Slug:    page.Slug,
	})
}

// 一意制約違反をConflictに変換
func mapDuplicate(err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicateEmail):
		return ErrDuplicateEmail
	case errors.Is(err, repository.ErrDuplicateUsername):
		return ErrDuplicateUsername
	case errors.Is(err, repository.ErrDuplicateExternal):
		return ErrFederatedEmailConflict
	default:
		return err
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
